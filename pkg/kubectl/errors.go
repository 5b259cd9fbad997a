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

package kubectl

import "fmt"

// CommandError is returned when kubectl cannot be started or exits non-zero.
type CommandError struct {
	Message  string
	Stderr   string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	return e.Message
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ParseError is returned when kubectl output is not valid JSON.
type ParseError struct {
	Raw []byte
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse kubectl output as JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
