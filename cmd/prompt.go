// File: cmd/prompt.go
package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// promptNonEmpty reads lines from in until a non-blank value is entered.
func promptNonEmpty(in io.Reader, out io.Writer, label string) (string, error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s: ", label)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		value := strings.TrimSpace(scanner.Text())
		if value != "" {
			return value, nil
		}
		fmt.Fprintln(out, "Value cannot be empty.")
	}
}

// promptPositiveInt reads lines from in until a positive integer is entered.
func promptPositiveInt(in io.Reader, out io.Writer, label string) (int, error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "%s: ", label)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		value := strings.TrimSpace(scanner.Text())
		n, err := strconv.Atoi(value)
		if err != nil {
			fmt.Fprintln(out, "Invalid number entered. Please enter an integer.")
			continue
		}
		if n <= 0 {
			fmt.Fprintln(out, "Please enter a positive number.")
			continue
		}
		return n, nil
	}
}
