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

package proc

import (
	"encoding/base64"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// DefaultMaxQueue is the pipeSink input queue depth used when an
// EdgeSpec leaves MaxQueue unset.
const DefaultMaxQueue = 64

// manifest is everything one child process needs to reconstruct its
// single component and wire it to the pipes the parent already opened
// for it: which fd carries each input port's frames, and which fd
// carries each output port's. ExtraFiles numbers inherited descriptors
// starting at 3, in the order the parent appended them; the manifest is
// how the child learns which fd is which named port without relying on
// argv ordering.
type manifest struct {
	Node      NodeSpec
	InputFDs  map[string]int
	OutputFDs map[string]int
	MaxQueue  map[string]int // output port name -> pipeSink queue depth
}

// encodeManifest renders m as a base64 string suitable for a single CLI
// argument (manifests are small: one node's name/kind/options plus a
// handful of fd numbers).
func encodeManifest(m manifest) (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", errors.Wrap(err, "proc: marshal manifest")
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// decodeManifest reverses encodeManifest. Exported via RunWorker's
// argument so cmd's hidden worker subcommand never has to know the
// manifest's shape.
func decodeManifest(s string) (manifest, error) {
	var m manifest
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return m, errors.Wrap(err, "proc: decode manifest")
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, errors.Wrap(err, "proc: unmarshal manifest")
	}
	return m, nil
}
