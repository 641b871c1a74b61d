package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"Solvanity/internal/crypto"
	"Solvanity/internal/generator"
	"Solvanity/internal/keystore"
	"Solvanity/internal/ops/verify"
	"Solvanity/pkg/appcfg"
	"Solvanity/pkg/config"
	"Solvanity/pkg/i18n"
	"Solvanity/pkg/logx"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const envPrefix = "SOLVANITY"

// NewRootCmd builds the search command and its subcommands. Every invocation
// gets its own viper instance so commands can be built repeatedly in tests.
//
// Precedence: flags, then SOLVANITY_* environment, then the --config
// profile, then built-in defaults.
func NewRootCmd(app *appcfg.Config) *cobra.Command {
	if app == nil {
		app = appcfg.Defaults()
	}
	msgs := i18n.Get(app.Language)
	cmd := newSearchCmd(msgs, func(cmd *cobra.Command, cfg *config.SearchConfig) error {
		return runSearch(cmd, app, msgs, cfg)
	})
	cmd.AddCommand(newVerifyCmd(msgs))
	return cmd
}

func newSearchCmd(msgs i18n.Messages, run func(*cobra.Command, *config.SearchConfig) error) *cobra.Command {
	v := newViper()

	cmd := &cobra.Command{
		Use:           "solvanity",
		Short:         msgs.AppShort,
		Long:          msgs.AppLong,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := searchConfig(cmd, v, msgs)
			if err != nil {
				return err
			}
			return run(cmd, cfg)
		},
	}

	def := config.Default()
	f := cmd.Flags()
	f.String("config", "", "YAML search profile")
	f.StringP("mode", "m", "", "match mode: regex|prefix|suffix|repeating")
	f.StringP("pattern", "p", "", "regular expression (regex mode)")
	f.StringP("word", "w", "", "word to match (prefix/suffix modes)")
	f.BoolP("ignore-case", "i", false, "case-insensitive prefix/suffix match")
	f.IntP("count", "c", 0, "minimum run of the leading character (repeating mode)")
	f.Duration("regex-timeout", 0, "abort the search if one regex evaluation takes longer (0 = no limit)")
	f.IntP("limit", "l", def.Limit, "number of matching keys to find")
	f.IntP("threads", "t", 0, "worker count (0 = app config cores, then all logical cores)")
	f.String("scheme", def.Scheme, "key scheme: solana|solana-mnemonic|evm|evm-mnemonic")
	f.String("passphrase", "", "BIP-39 passphrase for mnemonic schemes")
	f.Bool("pin", false, "pin worker i to core i")
	f.IntSlice("cores", nil, "explicit core per worker, implies --pin")
	f.String("out", def.OutDir, "base directory for found keys")
	f.Bool("encrypt", false, "store evm keys as V3 keystores (password from "+envPrefix+"_KEYSTORE_PASSWORD or prompt)")
	f.String("hint", "", "password hint written next to the keystores")
	f.Bool("persist-excess", false, "also persist matches that arrive after the limit")
	f.Bool("stop-on-persist-error", false, "abort the search when a key cannot be saved")
	f.Duration("progress-interval", def.ProgressInterval, "progress report cadence (>= 1s)")
	f.Duration("window", def.Window, "speed averaging window")
	bindFlags(v, f)
	return cmd
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// bindFlags binds every flag under its snake_case key, which is also the key
// used in YAML profiles and, upper-cased, in the environment.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.VisitAll(func(fl *pflag.Flag) {
		if fl.Name == "config" {
			return
		}
		_ = v.BindPFlag(strings.ReplaceAll(fl.Name, "-", "_"), fl)
	})
}

// searchConfig merges profile, environment and flags into a SearchConfig.
// Validation is left to generator.OptionsFrom.
func searchConfig(cmd *cobra.Command, v *viper.Viper, msgs i18n.Messages) (*config.SearchConfig, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		prof, err := config.Read(path)
		if err != nil {
			return nil, err
		}
		profileDefaults(v, prof)
	}

	cores, err := coresValue(v)
	if err != nil {
		return nil, err
	}

	cfg := &config.SearchConfig{
		Mode:               config.Mode(strings.ToLower(v.GetString("mode"))),
		Pattern:            v.GetString("pattern"),
		Word:               v.GetString("word"),
		IgnoreCase:         v.GetBool("ignore_case"),
		Count:              v.GetInt("count"),
		RegexTimeout:       v.GetDuration("regex_timeout"),
		Limit:              v.GetInt("limit"),
		Threads:            v.GetInt("threads"),
		Scheme:             strings.ToLower(v.GetString("scheme")),
		Passphrase:         v.GetString("passphrase"),
		PinCores:           v.GetBool("pin"),
		Cores:              cores,
		OutDir:             v.GetString("out"),
		PassHint:           v.GetString("hint"),
		PersistExcess:      v.GetBool("persist_excess"),
		StopOnPersistError: v.GetBool("stop_on_persist_error"),
		ProgressInterval:   v.GetDuration("progress_interval"),
		Window:             v.GetDuration("window"),
	}

	if v.GetBool("encrypt") {
		pw, err := keystorePassword(cmd, v, msgs)
		if err != nil {
			return nil, err
		}
		cfg.KeystorePassword = pw
	}
	return cfg, nil
}

// coresValue reads cores from any layer. The environment yields a plain
// string such as "0,1", which viper's GetIntSlice cannot convert.
func coresValue(v *viper.Viper) ([]int, error) {
	raw := v.Get("cores")
	if raw == nil {
		return nil, nil
	}
	if s, ok := raw.(string); ok {
		raw = strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	}
	cores, err := cast.ToIntSliceE(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: cores: %v", config.ErrInvalidConfig, err)
	}
	return cores, nil
}

// profileDefaults installs profile values below flags and environment.
func profileDefaults(v *viper.Viper, p *config.SearchConfig) {
	v.SetDefault("mode", string(p.Mode))
	v.SetDefault("pattern", p.Pattern)
	v.SetDefault("word", p.Word)
	v.SetDefault("ignore_case", p.IgnoreCase)
	v.SetDefault("count", p.Count)
	v.SetDefault("regex_timeout", p.RegexTimeout)
	v.SetDefault("limit", p.Limit)
	v.SetDefault("threads", p.Threads)
	v.SetDefault("scheme", p.Scheme)
	v.SetDefault("passphrase", p.Passphrase)
	v.SetDefault("pin", p.PinCores)
	if len(p.Cores) > 0 {
		v.SetDefault("cores", p.Cores)
	}
	v.SetDefault("out", p.OutDir)
	v.SetDefault("hint", p.PassHint)
	v.SetDefault("persist_excess", p.PersistExcess)
	v.SetDefault("stop_on_persist_error", p.StopOnPersistError)
	v.SetDefault("progress_interval", p.ProgressInterval)
	v.SetDefault("window", p.Window)
}

func keystorePassword(cmd *cobra.Command, v *viper.Viper, msgs i18n.Messages) (string, error) {
	if pw := v.GetString("keystore_password"); pw != "" {
		return pw, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w: --encrypt needs %s_KEYSTORE_PASSWORD when stdin is not a terminal", config.ErrInvalidConfig, envPrefix)
	}
	fmt.Fprint(cmd.ErrOrStderr(), msgs.PasswordPrompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if len(b) == 0 {
		return "", fmt.Errorf("%w: empty keystore password", config.ErrInvalidConfig)
	}
	return string(b), nil
}

func runSearch(cmd *cobra.Command, app *appcfg.Config, msgs i18n.Messages, cfg *config.SearchConfig) error {
	opt, err := generator.OptionsFrom(cfg, app.Cores)
	if err != nil {
		return err
	}
	opt.LogSecrets = !app.HideSecretsInConsole

	fs, err := keystore.NewFileSink(keystore.Options{
		BaseDir:  cfg.OutDir,
		Scheme:   opt.Scheme,
		Password: cfg.KeystorePassword,
		PassHint: cfg.PassHint,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	progress := NewConsoleProgress(out, msgs)
	sink := &announcingSink{sink: fs, progress: progress, start: time.Now()}

	logx.S().Infow("run directory ready", "dir", fs.Dir())

	ctx, stop := withInterrupt(cmd.Context())
	defer stop()
	res, runErr := generator.NewEngine(sink, progress).Run(ctx, opt)
	progress.Done()

	if res != nil {
		fmt.Fprintf(out, msgs.Summary+"\n", len(res.Keys), humanize.Comma(int64(res.Iterations)), res.Elapsed.Truncate(time.Millisecond))
		if len(res.Keys) > 0 || (opt.PersistExcess && res.Excess > 0) {
			fmt.Fprintf(out, msgs.SavedTo+"\n", fs.Dir())
		}
		if res.Excess > 0 {
			fmt.Fprintf(out, msgs.Excess+"\n", res.Excess)
		}
		if len(res.PersistErrors) > 0 {
			fmt.Fprintf(out, msgs.PersistFailed+"\n", len(res.PersistErrors))
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

// announcingSink persists a key and then prints it, so the console never
// announces a key that is not on disk yet.
type announcingSink struct {
	sink     generator.KeySink
	progress *ConsoleProgress
	start    time.Time
}

func (s *announcingSink) Persist(kp crypto.Keypair) error {
	if err := s.sink.Persist(kp); err != nil {
		return err
	}
	s.progress.Found(kp.Address, time.Since(s.start))
	return nil
}

func newVerifyCmd(msgs i18n.Messages) *cobra.Command {
	v := newViper()
	cmd := &cobra.Command{
		Use:   "verify <dir>",
		Short: msgs.VerifyShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := withInterrupt(cmd.Context())
			defer stop()
			rep, err := verify.Run(ctx, verify.Options{
				Dir:      args[0],
				Password: v.GetString("password"),
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, msgs.VerifyOK+"\n", rep.Total, rep.OK)
			if n := len(rep.Failures); n > 0 {
				fmt.Fprintf(out, msgs.VerifyFailed+"\n", n, rep.Total)
				for _, f := range rep.Failures {
					fmt.Fprintf(out, "  %s: %v\n", f.File, f.Err)
				}
				return fmt.Errorf("%d of %d key files failed verification", n, rep.Total)
			}
			return nil
		},
	}
	cmd.Flags().String("password", "", "keystore password (or "+envPrefix+"_PASSWORD)")
	bindFlags(v, cmd.Flags())
	return cmd
}

// withInterrupt cancels the returned context on SIGINT or SIGTERM. stop
// releases the signal handler.
func withInterrupt(parent context.Context) (ctx context.Context, stop func()) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case <-ch:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
