package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	ringfile "github.com/luhtfiimanal/go-ringfile"
)

var (
	errNoSize      = errors.New("does not exist and --size was not specified")
	errInvalidSize = errors.New("invalid size")
)

func (a *app) appendCommand() *cobra.Command {
	var size string
	c := &cobra.Command{
		Use:   "append FILE",
		Short: "Append every line of stdin to FILE as one record",
		Long: "append writes each line read from stdin as one record, discarding the oldest\n" +
			"records when FILE is full. FILE is created when it does not exist; --size\n" +
			"(or default_size in the config file) sets its total size then.",
		Example: "tail -F app.log | ringfile append --size 100M app.ring",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.appendLines(cmd.InOrStdin(), args[0], size); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return nil
		},
	}
	c.Flags().StringVarP(&size, "size", "s", "", "total file size when creating FILE, e.g. 4096, 64K, 400M")
	return c
}

func (a *app) appendLines(in io.Reader, path, size string) (err error) {
	r, err := a.openOrCreate(path, size)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(r))

	unlock, err := a.lock(path, true)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(unlock))
	if err := r.Reload(); err != nil {
		return err
	}

	br := bufio.NewReader(in)
	for {
		line, rerr := br.ReadBytes('\n')
		if rerr != nil && rerr != io.EOF {
			return fmt.Errorf("reading stdin: %w", rerr)
		}
		if rerr == io.EOF && len(line) == 0 {
			return nil
		}
		if n := len(line); n > 0 && line[n-1] == '\n' {
			line = line[:n-1]
		}
		if _, err := r.Write(line); err != nil {
			return fmt.Errorf("writing: %w", err)
		}
		if rerr == io.EOF {
			return nil
		}
	}
}

// openOrCreate opens path for appending, creating it when it does not exist.
// size is the total file size of a new ring, header included.
func (a *app) openOrCreate(path, size string) (*ringfile.Ring, error) {
	r, err := ringfile.OpenWithOptions(path, ringfile.ModeAppend, a.opts)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("cannot open: %w", err)
	}

	total := a.defaultSize
	if size != "" {
		if total, err = ringfile.ParseSize(size); err != nil {
			return nil, fmt.Errorf("%w %q", errInvalidSize, size)
		}
	}
	if total == 0 {
		return nil, errNoSize
	}
	if total <= ringfile.HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes leaves no room after the %d byte header", errInvalidSize, total, ringfile.HeaderSize)
	}

	a.log.Debug("creating ring", zap.String("path", path), zap.Uint64("size", total))
	r, err = ringfile.CreateWithOptions(path, total-ringfile.HeaderSize, a.opts)
	if err != nil {
		return nil, fmt.Errorf("cannot create: %w", err)
	}
	return r, nil
}
