/*
Copyright 2025 David Arnold
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at
    http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package util

import (
	"io"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// SetupLogger sets configuration for the default logger
func SetupLogger(w io.Writer) (err error) {
	var (
		lf = strings.ToLower(viper.GetString("output"))
	)

	log.SetOutput(w)

	// Set log format
	switch lf {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{
			DisableLevelTruncation: true,
		})
	}

	if viper.GetBool("verbose") {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
	return nil
}

// ParseProviderID returns the cloud provider and associated info.
// A providerID without a scheme yields an empty provider and no parts.
func ParseProviderID(pi string) (cp string, id []string) {
	scheme, rest, ok := strings.Cut(pi, ":")
	if !ok {
		return "", nil
	}
	return scheme, strings.Split(strings.TrimPrefix(rest, "//"), "/")
}

// InstanceID returns the trailing path segment of a providerID,
// e.g. "i-0123" for "aws:///us-west-2a/i-0123". ok is false when
// the providerID is empty.
func InstanceID(pi string) (id string, ok bool) {
	if pi == "" {
		return "", false
	}
	return pi[strings.LastIndex(pi, "/")+1:], true
}
