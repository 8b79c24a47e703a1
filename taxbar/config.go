// Copyright ©2026 The bíogo Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// applyConfig sets each flag in fs that was not given on the command
// line to its value in the named configuration file. Keys are flag
// names; list flags may be given as lists.
func applyConfig(fs *flag.FlagSet, path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	err := v.ReadInConfig()
	if err != nil {
		return fmt.Errorf("reading %q: %w", path, err)
	}

	given := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { given[f.Name] = true })
	fs.VisitAll(func(f *flag.Flag) {
		if err != nil || given[f.Name] || f.Name == "config" || !v.IsSet(f.Name) {
			return
		}
		err = fs.Set(f.Name, configValue(v, f.Name))
		if err != nil {
			err = fmt.Errorf("%q: key %s: %w", path, f.Name, err)
		}
	})
	return err
}

func configValue(v *viper.Viper, key string) string {
	switch v.Get(key).(type) {
	case []interface{}, []string:
		return strings.Join(v.GetStringSlice(key), ",")
	}
	return v.GetString(key)
}
