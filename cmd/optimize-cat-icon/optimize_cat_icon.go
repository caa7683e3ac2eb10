package main

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/KoviRobi/meowbuild/buildinfo"
	"github.com/KoviRobi/meowbuild/defaults"
	"github.com/KoviRobi/meowbuild/optimize"
)

var (
	cfgFile string
	opts    optimize.Options
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "optimize-cat-icon",
	Short: "Compress the cat icon and inline it as a data URI in HTML",
	Long: `Shrinks the cat icon to fit --max-dim, reduces it to a --colors palette with
Floyd-Steinberg dithering and encodes it as a PNG at best compression. The PNG
becomes a data:image/png;base64 URI which replaces the src of the

	<img class="cat-img" src="...">

tag in every --html file, in order. Extra arguments are more HTML files, so
"--html a.html b.html" patches both. Files that already carry the URI are left
untouched. The first file that can't be patched stops the run; files patched
before it keep their changes.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts.HTML = htmlTargets(cmd.Flags(), opts.HTML, args)
		_, err := optimize.Run(opts, cmd.OutOrStdout())
		return err
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().String("source", defaults.IconSource, "path to the source cat icon")
	rootCmd.Flags().StringArray("html", defaults.IconHTML(), "HTML file(s) to update, repeatable")
	rootCmd.Flags().Int("max-dim", defaults.IconMaxDim, "max width/height for the icon")
	rootCmd.Flags().Int("colors", defaults.IconColors, "palette size for PNG quantization")
	rootCmd.Flags().Bool("no-quantize", false, "disable palette quantization")
	rootCmd.Flags().String("out", "", "optional output path for the optimized PNG")
	rootCmd.Flags().Bool("allow-missing", false, "skip HTML files that do not exist")

	viper.BindPFlags(rootCmd.Flags())

	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is ./meowbuild.yaml)")
	buildinfo.AddVersionFlag(rootCmd.Flags(), rootCmd.Use)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("meowbuild")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("MEOWBUILD")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	opts = optimize.Options{
		Source:       viper.GetString("source"),
		HTML:         viper.GetStringSlice("html"),
		MaxDim:       viper.GetInt("max-dim"),
		Colors:       viper.GetInt("colors"),
		Quantize:     !viper.GetBool("no-quantize"),
		Out:          viper.GetString("out"),
		AllowMissing: viper.GetBool("allow-missing"),
	}
}

// htmlTargets builds the list of HTML files. Files named on the command line,
// by --html or as arguments, replace the configured ones and are taken
// verbatim, commas included.
func htmlTargets(f *pflag.FlagSet, configured, args []string) []string {
	targets := configured
	if f.Changed("html") {
		targets, _ = f.GetStringArray("html")
	} else if len(args) > 0 {
		targets = nil
	}
	return append(slices.Clone(targets), args...)
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
