package command

import (
	"fmt"
	"io"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	ringfile "github.com/luhtfiimanal/go-ringfile"
)

func (a *app) statCommand() *cobra.Command {
	var human bool
	c := &cobra.Command{
		Use:     "stat FILE",
		Short:   "Show the capacity and occupancy of FILE",
		Example: "ringfile stat -H events.ring",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.stat(cmd.OutOrStdout(), args[0], human); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return nil
		},
	}
	c.Flags().BoolVarP(&human, "human", "H", false, "print sizes with units (K, M, G)")
	return c
}

func (a *app) stat(out io.Writer, path string, human bool) (err error) {
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
	if err := r.Reload(); err != nil {
		return err
	}

	u := r.Usage()
	_, err = fmt.Fprintf(out, "File: %s\nSize: %s\nUsed: %s\nFree: %s\n",
		path, formatBytes(u.Capacity, human), formatBytes(u.Used, human), formatBytes(u.Free, human))
	return err
}

func formatBytes(n uint64, human bool) string {
	if human {
		return bytefmt.ByteSize(n)
	}
	return fmt.Sprintf("%d bytes", n)
}
