// License: GPLv3 Copyright: 2024, Kovid Goyal, <kovid at kovidgoyal.net>

package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sys/unix"

	"github.com/fcitx/fcitx5-fbterm/tools/cli"
	"github.com/fcitx/fcitx5-fbterm/tools/config"
	"github.com/fcitx/fcitx5-fbterm/tools/fbterm"
	"github.com/fcitx/fcitx5-fbterm/tools/fcitx"
	"github.com/fcitx/fcitx5-fbterm/tools/keymap"
	"github.com/fcitx/fcitx5-fbterm/tools/overlay"
	"github.com/fcitx/fcitx5-fbterm/tools/session"
	"github.com/fcitx/fcitx5-fbterm/tools/tty"
	"github.com/fcitx/fcitx5-fbterm/tools/utils"
)

var _ = fmt.Print

type Options struct {
	Config, Override       []string
	Foreground, Background string
	Raw, KernelKeymap      bool
	LogLevel, LogFile      string
}

// resolve combines the config files with the themed program name, the
// environment and the command line, later sources winning
func resolve(opts *Options, flags *pflag.FlagSet, argv0 string, getenv func(string) string) (*config.Options, []config.ConfigLine, error) {
	ans, bad_lines, err := config.Load(opts.Config, opts.Override)
	if err != nil {
		return nil, nil, err
	}
	ans.ApplyProgramName(argv0)
	ans.ApplyEnv(getenv)
	if opts.Foreground != "" {
		if ans.Foreground, err = overlay.ParseColor(opts.Foreground); err != nil {
			return nil, nil, err
		}
	}
	if opts.Background != "" {
		if ans.Background, err = overlay.ParseColor(opts.Background); err != nil {
			return nil, nil, err
		}
	}
	if flags.Changed("raw") {
		ans.RawKeyboard = opts.Raw
	}
	if flags.Changed("kernel-keymap") {
		ans.KernelKeymap = opts.KernelKeymap
	}
	if opts.LogLevel != "" {
		if ans.LogLevel, err = utils.ParseLogLevel(opts.LogLevel); err != nil {
			return nil, nil, err
		}
	}
	if opts.LogFile != "" {
		ans.LogFile = opts.LogFile
	}
	return ans, bad_lines, nil
}

// open_console finds the console whose keymap and lock state we use: our
// stdin when it is a virtual console, otherwise the controlling terminal
func open_console(log *slog.Logger) (*tty.Console, *keymap.Keymap) {
	try := func(c *tty.Console) *keymap.Keymap {
		km, err := keymap.LoadKernelKeymap(c)
		if err != nil {
			log.Debug("Could not read the console keymap", "console", c.Name(), "error", err)
			return nil
		}
		return km
	}
	if c, err := tty.WrapConsole(unix.Stdin, "stdin"); err == nil {
		if km := try(c); km != nil {
			return c, km
		}
	}
	if c, err := tty.OpenControllingConsole(); err == nil {
		if km := try(c); km != nil {
			return c, km
		}
		c.Close()
	}
	return nil, nil
}

func connect_input_method(log *slog.Logger) (session.InputMethod, <-chan session.Event, func()) {
	client, err := fcitx.Connect(log)
	if err != nil {
		log.Warn("No input method available", "error", err)
		return session.Disconnected{}, nil, func() {}
	}
	return client, client.Events(), func() { client.Close() }
}

func main(cmd *cobra.Command, opts *Options) (err error) {
	argv0 := os.Args[0]
	conf, bad_lines, err := resolve(opts, cmd.Flags(), argv0, os.Getenv)
	if err != nil {
		return err
	}
	log, log_closer, err := utils.SetupLogging(conf.LogLevel, conf.LogFile)
	if err != nil {
		return err
	}
	defer log_closer.Close()
	for _, bl := range bad_lines {
		log.Warn("Ignoring bad config line", "line", bl.String())
	}

	host, err := fbterm.Open(os.Getenv, log)
	if err != nil {
		if errors.Is(err, fbterm.ErrNoHostSocket) {
			return fmt.Errorf("Can't connect to fbterm, make sure to start using `fbterm -i %s`: %w", filepath.Base(argv0), err)
		}
		return err
	}
	defer host.Close()

	translator := keymap.NewTranslator(nil)
	var console keymap.Console
	if conf.KernelKeymap {
		if c, km := open_console(log); c != nil {
			defer c.Close()
			translator, console = keymap.NewTranslator(km), c
			log.Debug("Using the console keymap", "console", c.Name())
		} else {
			log.Info("Falling back to the built-in US keymap")
		}
	}

	im, im_events, close_im := connect_input_method(log)
	defer close_im()

	controller := session.NewController(host, im, session.Options{
		Palette:     conf.Palette(),
		Translator:  translator,
		Console:     console,
		NoticeText:  fcitx.NoticeText,
		PassThrough: !conf.RawKeyboard,
		Logger:      log,
	})
	if err = host.Connect(conf.RawKeyboard); err != nil {
		return err
	}
	host_events, err := host.Start()
	if err != nil {
		return err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM, unix.SIGHUP)
	defer cancel()
	err = controller.Run(ctx, host_events, im_events)
	if errors.Is(err, context.Canceled) {
		log.Info("Exiting on signal")
		err = nil
	}
	if derr := host.Disconnect(); derr != nil {
		log.Debug("Disconnecting from the terminal failed", "error", derr)
	}
	if err == nil {
		err = host.ReadError()
	}
	return err
}

func EntryPoint() *cobra.Command {
	opts := Options{}
	root := cli.CreateCommand(&cobra.Command{
		Use:   "fcitx5-fbterm [options]",
		Short: "Use the fcitx5 input method in the fbterm framebuffer terminal",
		Long: "Use the fcitx5 input method in the fbterm framebuffer terminal. Run it as the input method of fbterm with: :code:`fbterm -i fcitx5-fbterm`\n\n" +
			"Settings are read from :file:`" + utils.CONFIG_FILE_NAME + "`, the :envvar:`" + config.FOREGROUND_ENV + "` and :envvar:`" + config.BACKGROUND_ENV +
			"` environment variables and the command line, in increasing order of priority. A link to the program named like :code:`fcitx5-fbterm-White-DarkBlue` uses those colours.",
		Args: cobra.NoArgs,
	})
	flags := root.Flags()
	flags.StringArrayVarP(&opts.Config, "config", "c", nil, "Path to the config file to use, can be specified multiple times. Defaults to :file:`"+utils.CONFIG_FILE_NAME+"` in the config directory")
	flags.StringArrayVarP(&opts.Override, "override", "o", nil, "Override individual config settings, for example: :code:`-o foreground=White`")
	opts_fg := cli.OptionalChoices(root, "foreground", "The text colour of the input method window", overlay.ColorNames[:]...)
	opts_bg := cli.OptionalChoices(root, "background", "The background colour of the input method window", overlay.ColorNames[:]...)
	flags.BoolVar(&opts.Raw, "raw", true, "Ask fbterm for raw keycodes, use :option:`--raw=false` to get already translated bytes that are passed through unchanged")
	flags.BoolVar(&opts.KernelKeymap, "kernel-keymap", true, "Translate keys with the keymap of the console instead of the built-in US layout")
	opts_level := cli.OptionalChoices(root, "log-level", "The level of messages to log", utils.LogLevelChoices...)
	flags.StringVar(&opts.LogFile, "log-file", "", "Log to this file instead of STDERR")
	root.RunE = func(cmd *cobra.Command, args []string) error {
		opts.Foreground, opts.Background, opts.LogLevel = *opts_fg, *opts_bg, *opts_level
		return main(cmd, &opts)
	}
	cli.Init(root)
	return root
}
