package core

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/kat-co/vala"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Getwd tries to find the project root (the directory holding go.mod).
// go-test changes the working directory to the test package being run,
// so relative paths such as `config/.env.test` would break otherwise.
// Binaries installed away from the sources fall back to the working directory.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	currDir := wd
	for {
		if fi, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil && !fi.IsDir() {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}

// IsSet is vala.IsNotNil for interface parameters: it accepts implementations of any kind,
// including value types that can never be nil.
func IsSet(obtained interface{}, paramName string) vala.Checker {
	return func() (bool, string) {
		ok := obtained != nil
		if ok {
			switch v := reflect.ValueOf(obtained); v.Kind() {
			case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
				ok = !v.IsNil()
			}
		}
		return ok, "Parameter was nil: " + paramName
	}
}
