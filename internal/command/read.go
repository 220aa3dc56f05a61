package command

import (
	"bufio"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	ringfile "github.com/luhtfiimanal/go-ringfile"
)

func (a *app) readCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "read FILE",
		Short:   "Print every record in FILE, oldest first, one per line",
		Example: "ringfile read events.ring",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.read(cmd.OutOrStdout(), args[0]); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return nil
		},
	}
}

func (a *app) read(out io.Writer, path string) (err error) {
	r, err := ringfile.OpenWithOptions(path, ringfile.ModeRead, a.opts)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(r))

	unlock, err := a.lock(path, false)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(unlock))
	// the header may have moved between Open and the lock
	if err := r.Reload(); err != nil {
		return err
	}

	w := bufio.NewWriter(out)
	var rec []byte
	for {
		rec, err = r.AppendRecord(rec[:0])
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		w.Write(rec)
		w.WriteByte('\n')
	}
	return w.Flush()
}
