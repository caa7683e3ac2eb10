// Package buildinfo adds a --version flag reporting how the tool was built.
package buildinfo

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/earthboundkid/versioninfo/v2"
	"github.com/spf13/pflag"
)

// AddVersionFlag adds -v and -version flags to the FlagSet.
// If triggered, the flags print version information and call os.Exit(0).
// If FlagSet is nil, it adds the flags to pflag.CommandLine.
func AddVersionFlag(f *pflag.FlagSet, name string) {
	if f == nil {
		f = pflag.CommandLine
	}
	flag := f.VarPF(boolFunc(func(b bool) error {
		if !b {
			return nil
		}
		Print(os.Stdout, name)
		os.Exit(0)
		panic("unreachable")
	}), "version", "v", "print version information and exit")
	flag.DefValue = "false"
	flag.NoOptDefVal = "true"
}

func Print(w io.Writer, name string) {
	fmt.Fprintln(w, name)
	fmt.Fprintln(w, "Version:", versioninfo.Version)
	fmt.Fprintln(w, "Revision:", versioninfo.Revision)
	if versioninfo.Revision != "unknown" {
		fmt.Fprintln(w, "Committed:", versioninfo.LastCommit.Format(time.RFC1123))
		if versioninfo.DirtyBuild {
			fmt.Fprintln(w, "Dirty Build")
		}
	}
}

type boolFunc func(bool) error

func (f boolFunc) IsBoolFlag() bool {
	return true
}

func (f boolFunc) String() string {
	return ""
}

func (f boolFunc) Type() string {
	return "bool"
}

func (f boolFunc) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	return f(b)
}
