package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/KoviRobi/meowbuild/buildinfo"
	"github.com/KoviRobi/meowbuild/defaults"
	"github.com/KoviRobi/meowbuild/version"
)

var cfgFile, root, versionFile, header string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "inject-version",
	Short: "Copy the VERSION file into include/version.h",
	Long: `Reads the project version from VERSION and rewrites the existing

	#define VERSION_STR "..."

line of include/version.h to match. A missing or blank VERSION gives ` + defaults.FallbackVersion + `.
The header must already exist and declare VERSION_STR; it is only rewritten
when the version actually changes.

Run from the project root, or point --root at it.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.OutOrStdout(), resolvePaths(root, versionFile, header))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("root", ".", "project root containing VERSION and include/")
	rootCmd.PersistentFlags().String("version-file", "", "version file (default is <root>/"+defaults.VersionFile+")")
	rootCmd.PersistentFlags().String("header", "", "header to update (default is <root>/"+defaults.VersionHeader+")")

	viper.BindPFlags(rootCmd.PersistentFlags())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./meowbuild.yaml)")
	buildinfo.AddVersionFlag(rootCmd.PersistentFlags(), rootCmd.Use)
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

	root = viper.GetString("root")
	versionFile = viper.GetString("version-file")
	header = viper.GetString("header")
}

// resolvePaths fixes the file locations once; overrides that are relative are
// taken relative to the root.
func resolvePaths(root, versionFile, header string) version.Paths {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	paths := version.DefaultPaths(root)
	if versionFile != "" {
		paths.VersionFile = underRoot(root, versionFile)
	}
	if header != "" {
		paths.Header = underRoot(root, header)
	}
	return paths
}

func underRoot(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func run(w io.Writer, paths version.Paths) error {
	v, err := version.ReadVersion(paths.VersionFile)
	if err != nil {
		return err
	}
	if _, err := version.InjectVersion(paths.Header, v); err != nil {
		return err
	}
	fmt.Fprintf(w, "Updated %s with %s\n", paths.Header, v)
	return nil
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
