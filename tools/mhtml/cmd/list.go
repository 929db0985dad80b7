package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/zostay/go-mhtml/message"
	"github.com/zostay/go-mhtml/message/walker"
	"github.com/zostay/go-mhtml/sniff"
	"github.com/zostay/go-mhtml/unpack"
)

var listCmd = &cobra.Command{
	Use:   "list FILE...",
	Short: "List the parts of archives",
	Args:  cobra.MinimumNArgs(1),
	RunE:  RunList,
}

// RunList prints a summary of each archive named in args.
func RunList(cmd *cobra.Command, args []string) error {
	var errs []error
	for _, path := range args {
		if err := listFile(cmd.OutOrStdout(), path); err != nil {
			slog.Error("unable to list archive", "path", path, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func listFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	msg, err := message.Parse(f)
	var perr *message.ParseError
	if errors.As(err, &perr) {
		for _, e := range perr.Errs {
			slog.Warn("problem parsing archive", "path", path, "error", e)
		}
	} else if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	return List(w, path, msg)
}

// List writes the summary of one parsed archive to w.
func List(w io.Writer, name string, msg message.Generic) error {
	h := msg.GetHeader()

	subject, _ := h.GetSubject()
	from := ""
	if al, err := h.GetFrom(); err == nil {
		from = al.String()
	}
	date := ""
	if t, err := h.GetDate(); err == nil {
		date = t.Format(time.RFC1123Z)
	}

	_, _ = fmt.Fprintf(w, "%s\n", name)
	_, _ = fmt.Fprintf(w, "  Subject: %s\n", subject)
	_, _ = fmt.Fprintf(w, "  From:    %s\n", from)
	_, _ = fmt.Fprintf(w, "  Date:    %s\n", date)

	leaves, branches, err := count(msg)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "  Parts:   %d in %d multipart\n", leaves, branches)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  DEPTH\tTYPE\tCONTENT-ID\tCONTENT-LOCATION\tSIZE\tDIGEST")

	describer := unpack.NewDescriber(sniff.Magic{}, unpack.NewExtensionTable(nil))
	err = walker.Parts(
		func(depth, _ int, part message.Part) error {
			ph := part.GetHeader()
			cid, _ := ph.GetContentID()
			loc, _ := ph.GetContentLocation()

			if part.IsMultipart() {
				mt, _ := ph.GetMediaType()
				_, _ = fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%d parts\t\n",
					depth, mt, dash(cid), dash(loc), len(part.GetParts()))
				return nil
			}

			d := describer.Describe(part, "")
			_, _ = fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%d\t%s\n",
				depth, dash(d.ContentType), dash(cid), dash(loc), len(d.Payload), d.Digest)
			return nil
		}).Walk(msg)
	if err != nil {
		return err
	}

	return tw.Flush()
}

// count returns the number of leaf parts and multipart parts in msg.
func count(msg message.Generic) (leaves, branches int, err error) {
	var leaf walker.Parts = func(_, _ int, _ message.Part) error {
		leaves++
		return nil
	}
	if err := leaf.WalkOpaque(msg); err != nil {
		return 0, 0, err
	}

	var branch walker.Parts = func(_, _ int, _ message.Part) error {
		branches++
		return nil
	}
	if err := branch.WalkMultipart(msg); err != nil {
		return 0, 0, err
	}

	return leaves, branches, nil
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
