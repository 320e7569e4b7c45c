// SPDX-FileCopyrightText: 2022 SoftIron Limited <info@softiron.com>
// SPDX-License-Identifier: GNU General Public License v2.0 only WITH Classpath exception 2.0

// Package report writes the per-device result file dwipe leaves next
// to each device after a wipe, in the shell-sourceable key='value'
// format the original tool produces.
package report

import (
	"fmt"
	"os"

	"github.com/dwipe-project/dwipe/internal/engine"
	"github.com/dwipe-project/dwipe/internal/pattern"
)

// WriteResultFile writes "<name>.result" describing one device's
// outcome, in the same DWIPE_* shell-variable format the original C
// tool emits so existing consumers of that file keep working
// unmodified.
func WriteResultFile(name string, label string, method *pattern.Method, rounds int, verifyLabel string, result engine.Result) error {
	path := name + ".result"

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating result file %s: %w", path, err)
	}
	defer f.Close()

	fmt.Fprintf(f, "DWIPE_LABEL='%s'\n", label)
	fmt.Fprintf(f, "DWIPE_METHOD='%s'\n", method.Label)
	fmt.Fprintf(f, "DWIPE_ROUNDS='%d'\n", rounds)
	fmt.Fprintf(f, "DWIPE_VERIFY='%s'\n", verifyLabel)

	if result.Outcome == engine.OutcomePass {
		fmt.Fprintf(f, "DWIPE_RESULT='pass'\n")
	} else {
		fmt.Fprintf(f, "DWIPE_RESULT='fail'\n")
	}

	return nil
}
