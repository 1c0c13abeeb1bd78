// SPDX-License-Identifier: AGPL-3.0-or-later
// voiced - a group-voice control-plane server
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/USA-RedDragon/configulator"

	"github.com/soliloque-go/voiced/cmd"
	"github.com/soliloque-go/voiced/internal/config"
)

// version and commit are stamped in by the release build via -ldflags.
var (
	version = "dev"
	commit  = "dirty"
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := cmd.NewCommand(version, commit)

	c := configulator.New[config.Config]()
	ctx, err := c.ToContext(context.Background(), rootCmd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voiced: failed to bind configuration: %v\n", err)
		return 1
	}
	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "voiced: %v\n", err)
		return 1
	}
	return 0
}
