package logtool

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/NordCoder/uptimed/internal/logsink"
	"github.com/NordCoder/uptimed/internal/services/monitor"
)

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newListCmd(opts *options) *cobra.Command {
	var archives bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List live log streams, optionally with archives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sink, l, err := opts.open()
			if err != nil {
				return err
			}
			defer func() { _ = l.Sync() }()

			names, err := sink.List(archives)
			if err != nil {
				return err
			}
			sort.Strings(names)
			if opts.output == "json" {
				if names == nil {
					names = []string{}
				}
				return writeJSON(cmd.OutOrStdout(), names)
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&archives, "archives", false, "include compressed archives")
	return cmd
}

func newCatCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <archive>",
		Short: "Decompress an archive and print its log lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sink, l, err := opts.open()
			if err != nil {
				return err
			}
			defer func() { _ = l.Sync() }()

			name := strings.TrimSuffix(args[0], logsink.ArchiveSuffix)
			data, err := sink.Decompress(name)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newRotateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rotate",
		Short: "Archive and truncate every non-empty live stream now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sink, l, err := opts.open()
			if err != nil {
				return err
			}
			defer func() { _ = l.Sync() }()

			uc := &monitor.Usecase{Logs: sink, Clock: wallClock{}, Log: l.With(zap.String("component", "logtool"))}
			rep, rotErr := uc.RotateLogs(cmd.Context())
			if opts.output == "json" {
				if err := writeJSON(cmd.OutOrStdout(), rep); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "streams=%d rotated=%d skipped=%d failed=%d\n",
					rep.Streams, rep.Rotated, rep.Skipped, rep.Failed)
			}
			return rotErr
		},
	}
}

func newTruncateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "truncate <stream>",
		Short: "Empty a live stream without archiving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sink, l, err := opts.open()
			if err != nil {
				return err
			}
			defer func() { _ = l.Sync() }()

			return sink.Truncate(strings.TrimSuffix(args[0], logsink.LiveSuffix))
		},
	}
}
