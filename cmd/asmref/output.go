package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/asmref/codec"
)

const formatText = "text"

func checkFormat(format string) error {
	if format == formatText {
		return nil
	}
	if _, ok := codec.ByName(format); !ok {
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatText, strings.Join(codec.Names(), ", "))
	}
	return nil
}

// writeStructured encodes v with the codec named by format.
func writeStructured(w io.Writer, format string, v any) error {
	c, ok := codec.ByName(format)
	if !ok {
		return fmt.Errorf("unknown format %q", format)
	}
	b, err := c.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
