/*
 * This file is part of Quiz Game Bot.
 * Copyright (C) 2026  Andrei
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package utils

import (
	"math"
	"strings"
)

// DisplayName prefers the @handle over the first name.
func DisplayName(username, firstName string) string {
	if username != "" {
		return "@" + username
	}
	if firstName != "" {
		return firstName
	}
	return "—"
}

// WinPercent returns correct/total as a percentage rounded to one
// decimal place. Zero games gives 0.0.
func WinPercent(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*1000) / 10
}

// FormatTable renders rows as a monospace table with dynamic column
// widths, suitable for a <pre> block.
func FormatTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len([]rune(h))
	}
	for _, row := range rows {
		for i, cell := range row {
			if l := len([]rune(cell)); l > widths[i] {
				widths[i] = l
			}
		}
	}

	sep := "+"
	for _, w := range widths {
		sep += strings.Repeat("-", w+2) + "+"
	}

	formatRow := func(row []string) string {
		out := "|"
		for i, cell := range row {
			out += " " + cell + strings.Repeat(" ", widths[i]-len([]rune(cell))) + " |"
		}
		return out
	}

	lines := []string{sep, formatRow(headers), sep}
	for _, row := range rows {
		lines = append(lines, formatRow(row))
	}
	lines = append(lines, sep)

	return strings.Join(lines, "\n")
}
