// Command rarmeta dumps the header metadata of RAR archives without
// decompressing them. It understands all three header generations and
// can follow multi-volume archives given their first volume.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/javi11/rarmeta"
	"github.com/javi11/rarmeta/rar14"
	"github.com/javi11/rarmeta/rar15"
	"github.com/javi11/rarmeta/rar50"
)

var log = logrus.New()

func main() {
	var (
		asJSON     bool
		dumpBlocks bool
		volumes    bool
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "rarmeta <archive>...",
		Short: "List the contents and header structure of RAR archives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			for _, path := range args {
				var err error
				switch {
				case volumes:
					err = dumpAggregated(path, asJSON)
				case dumpBlocks:
					err = dumpBlockStructure(path)
				default:
					err = dumpEntries(path)
				}
				if err != nil {
					// Keep going: one broken archive should not stop the
					// rest of the batch.
					log.WithField("archive", path).WithError(err).Error("dump failed")
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit aggregated listing as JSON")
	cmd.Flags().BoolVar(&dumpBlocks, "blocks", false, "dump the raw block structure instead of file entries")
	cmd.Flags().BoolVar(&volumes, "volumes", false, "treat each argument as the first volume and follow the rest")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openArchive(path string) (*rarmeta.Archive, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	a, err := rarmeta.OpenReader(f, uint64(st.Size()))
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return a, f, nil
}

func dumpEntries(path string) error {
	a, f, err := openArchive(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	log.WithFields(logrus.Fields{
		"archive": path,
		"format":  a.Format.String(),
		"offset":  a.SignatureOffset,
	}).Debug("signature found")

	entries, err := a.Entries()
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", path, a.Format)
	for _, e := range entries {
		attrs := ""
		if e.Stored {
			attrs += " stored"
		}
		if e.Encrypted {
			attrs += " encrypted"
		}
		if e.SplitBefore || e.SplitAfter {
			attrs += " split"
		}
		mtime := "-"
		if e.ModificationTime.Valid {
			mtime = e.ModificationTime.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("  %-50s %10s %10s  %s%s\n",
			e.Name,
			humanize.Bytes(e.PackedSize),
			humanize.Bytes(e.UnpackedSize),
			mtime,
			attrs,
		)
	}
	return nil
}

func dumpAggregated(first string, asJSON bool) error {
	files, err := rarmeta.ListFiles(first)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(files)
	}

	for _, af := range files {
		fmt.Printf("%s  %s packed, %s unpacked, %d part(s)\n",
			af.Name,
			humanize.Bytes(af.TotalPackedSize),
			humanize.Bytes(af.TotalUnpackedSize),
			len(af.Parts),
		)
		for _, p := range af.Parts {
			fmt.Printf("  %s @%d (%s)\n", p.Path, p.DataOffset, humanize.Bytes(p.PackedSize))
		}
	}
	return nil
}

func dumpBlockStructure(path string) error {
	a, f, err := openArchive(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	fmt.Printf("%s: %s, signature at %d\n", path, a.Format, a.SignatureOffset)

	it := a.Blocks()
	for {
		block, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("  @%-10d %-12s header=%-6d data=%d\n",
			block.Position(),
			blockKindName(block),
			block.HeaderSize(),
			block.DataSize(),
		)
	}
}

func blockKindName(b *rarmeta.Block) string {
	switch b.Format {
	case rarmeta.FormatRar14:
		switch b.Rar14.Kind.(type) {
		case *rar14.MainBlock:
			return "main"
		case *rar14.FileBlock:
			return "file"
		}
	case rarmeta.FormatRar15:
		switch k := b.Rar15.Kind.(type) {
		case *rar15.MainBlock:
			return "main"
		case *rar15.FileBlock:
			return "file"
		case *rar15.ServiceBlock:
			return "service"
		case *rar15.CommentBlock:
			return "comment"
		case *rar15.AvBlock:
			return "av"
		case *rar15.SubBlock:
			return "sub"
		case *rar15.ProtectBlock:
			return "protect"
		case *rar15.SignBlock:
			return "sign"
		case *rar15.EndArchiveBlock:
			return "endarc"
		case *rar15.UnknownBlock:
			return fmt.Sprintf("unknown(%#x)", k.Tag)
		}
	default:
		switch k := b.Rar50.Kind.(type) {
		case *rar50.MainBlock:
			return "main"
		case *rar50.FileBlock:
			return "file"
		case *rar50.ServiceBlock:
			return "service"
		case *rar50.CryptBlock:
			return "crypt"
		case *rar50.EndArchiveBlock:
			return "endarc"
		case *rar50.UnknownBlock:
			return fmt.Sprintf("unknown(%#x)", k.Tag)
		}
	}
	return "?"
}
