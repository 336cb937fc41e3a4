package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/arloliu/geokey/index"
	"github.com/arloliu/geokey/ingest"
)

const envPrefix = "GEOKEY"

// NewRootCommand returns the geokey command tree writing to the given streams.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	rc := &cobra.Command{
		Use:   "geokey",
		Short: "Inspect geokey index descriptors, encode records and plan queries.",
		Long: `geokey maps multi-dimensional records to ordered storage keys.

Every command reads an index descriptor in YAML form. Flags may also be set
from GEOKEY_* environment variables or a YAML configuration file.
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setAllConfig(viper.New(), cmd.Flags())
		},
	}
	rc.PersistentFlags().StringP("config", "c", "", "Configuration file to read from.")
	rc.PersistentFlags().StringP("descriptor", "d", "", "Index descriptor (YAML).")
	rc.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error.")
	rc.PersistentFlags().String("log-format", "text", "Log format: text or json.")

	rc.AddCommand(newDescribeCommand(stdout, stderr))
	rc.AddCommand(newEncodeCommand(stdin, stdout, stderr))
	rc.AddCommand(newPlanCommand(stdout, stderr))

	rc.SetIn(stdin)
	rc.SetOut(stdout)
	rc.SetErr(stderr)

	return rc
}

// setAllConfig applies, in priority order, command line flags, GEOKEY_*
// environment variables and the configuration file to every flag in flags.
func setAllConfig(v *viper.Viper, flags *pflag.FlagSet) error {
	if err := v.BindPFlags(flags); err != nil {
		return err
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	validTags := make(map[string]bool)
	flags.VisitAll(func(f *pflag.Flag) {
		validTags[f.Name] = true
	})

	if c := v.GetString("config"); c != "" {
		v.SetConfigFile(c)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading configuration file '%s': %w", c, err)
		}
		for _, key := range v.AllKeys() {
			if !validTags[key] {
				return fmt.Errorf("invalid option in configuration file: %v", key)
			}
		}
	}

	var flagErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if flagErr != nil || f.Changed {
			return
		}
		var value string
		if f.Value.Type() == "stringSlice" {
			value = strings.Join(v.GetStringSlice(f.Name), ",")
			if value == "" {
				return
			}
		} else {
			value = v.GetString(f.Name)
		}
		flagErr = f.Value.Set(value)
	})

	return flagErr
}

// loadIndex reads the descriptor named by the --descriptor flag.
func loadIndex(cmd *cobra.Command, opts ...index.Option) (*index.Index, error) {
	path, err := cmd.Flags().GetString("descriptor")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return nil, fmt.Errorf("--descriptor is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	d, err := index.ParseDescriptorYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return index.FromDescriptor(d, opts...)
}

func newLogger(cmd *cobra.Command, w io.Writer) (*ingest.Logger, error) {
	flags := cmd.Flags()
	levelName, err := flags.GetString("log-level")
	if err != nil {
		return nil, err
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", levelName, err)
	}

	format, err := flags.GetString("log-format")
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case "text":
		return ingest.NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return ingest.NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}
