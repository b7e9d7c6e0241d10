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
	"strings"
	"testing"
)

func TestDisplayName(t *testing.T) {
	cases := []struct {
		username, firstName, expected string
	}{
		{"vasya", "Василий", "@vasya"},
		{"", "Василий", "Василий"},
		{"", "", "—"},
	}

	for _, tc := range cases {
		if got := DisplayName(tc.username, tc.firstName); got != tc.expected {
			t.Errorf("DisplayName(%q, %q): got %q, expected %q", tc.username, tc.firstName, got, tc.expected)
		}
	}
}

func TestWinPercent(t *testing.T) {
	cases := []struct {
		correct, total int
		expected       float64
	}{
		{3, 4, 75.0},
		{0, 0, 0.0},
		{0, 5, 0.0},
		{1, 3, 33.3},
		{2, 3, 66.7},
		{5, 5, 100.0},
	}

	for _, tc := range cases {
		if got := WinPercent(tc.correct, tc.total); got != tc.expected {
			t.Errorf("WinPercent(%d, %d): got %v, expected %v", tc.correct, tc.total, got, tc.expected)
		}
	}
}

func TestFormatTable(t *testing.T) {
	table := FormatTable(
		[]string{"№", "Имя"},
		[][]string{
			{"1", "@vasya"},
			{"2", "Пётр"},
		},
	)

	expected := strings.Join([]string{
		"+---+--------+",
		"| № | Имя    |",
		"+---+--------+",
		"| 1 | @vasya |",
		"| 2 | Пётр   |",
		"+---+--------+",
	}, "\n")

	if table != expected {
		t.Errorf("Wrong table.\nGot:\n%s\nExpected:\n%s", table, expected)
	}
}
