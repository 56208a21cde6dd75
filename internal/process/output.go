// SPDX-License-Identifier: MPL-2.0

package process

import "bytes"

// capturedOutput holds the stdout and stderr buffers of a capturing run.
type capturedOutput struct {
	stdout bytes.Buffer
	stderr bytes.Buffer
}
