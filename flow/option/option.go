// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package option provides the loosely-typed option bag components declare
// their ports and construction parameters through.
package option

import (
	"reflect"
	"time"

	"github.com/spf13/cast"
)

// Options is a loosely-typed construction-parameter bag, passed to a
// component factory at graph-build time (spec.md §6 "Component authoring
// API").
type Options map[string]any

func New() Options {
	return make(Options)
}

func (o Options) GetInt(k string) (int, error) {
	return cast.ToIntE(o[k])
}

func (o Options) GetIntOr(k string, def int) int {
	v, err := o.GetInt(k)
	if err != nil {
		return def
	}
	return v
}

func (o Options) GetBool(k string) (bool, error) {
	return cast.ToBoolE(o[k])
}

func (o Options) GetString(k string) (string, error) {
	return cast.ToStringE(o[k])
}

func (o Options) GetStringOr(k, def string) string {
	v, err := o.GetString(k)
	if err != nil {
		return def
	}
	return v
}

func (o Options) GetDuration(k string) (time.Duration, error) {
	return cast.ToDurationE(o[k])
}

func (o Options) GetStringSlice(k string) ([]string, error) {
	return cast.ToStringSliceE(o[k])
}

func (o Options) Has(k string) bool {
	_, ok := o[k]
	return ok
}

func (o Options) Merge(k string, v any) {
	o[k] = v
}

// TypesOf converts a list of sample values into their reflect.Type, the
// shape flow/port.Options.AllowedTypes expects.
func TypesOf(samples ...any) []reflect.Type {
	types := make([]reflect.Type, 0, len(samples))
	for _, s := range samples {
		types = append(types, reflect.TypeOf(s))
	}
	return types
}
