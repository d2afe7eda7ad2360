// ESide
// Copyright (c) 2026 The ESide Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of ESide.
//
// ESide is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ESide is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with ESide.  If not, see <http://www.gnu.org/licenses/>.

package config

var AppVersion = "DEVELOPMENT"

const (
	AppName       = "eside"
	CfgFile       = "settings.toml"
	EmulatorsFile = "eside.ini"
	LogsDir       = "logs"
)
