// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mangoh wires the SX1509 GPIO expanders of the mangOH boards.
//
// The mangOH Green carries three expanders. Expander #2 signals its
// interrupts on a GPIO of the host module, while the INT lines of expanders
// #1 and #3 are wired to pins 0 and 14 of expander #2. Open resets the chips
// and installs the handlers that forward those cascaded interrupts, so a
// single Board.Run loop serves every pin of the board.
//
// The mangOH Red carries one expander on the bus three above the primary I²C
// bus of the module.
package mangoh
