// Copyright (c) 2026 Credkey Team
// Credkey - credential verifier key system
// This source code is licensed under the MIT license found in the LICENSE file.

package verifier

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/compress/zstd"

	"github.com/nextchat/credkey/internal/crypto/modexp"
)

// zstdMagic is the frame header ReadRecords sniffs for.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// Validate checks that both fields are canonical decimal integers.
func (r Record) Validate() error {
	if _, err := modexp.ParseDecimal(r.Ciphertext); err != nil {
		return fmt.Errorf("password: %w", err)
	}
	if _, err := modexp.ParseDecimal(r.Modulus); err != nil {
		return fmt.Errorf("passwordKey: %w", err)
	}
	return nil
}

// MarshalRecords renders records as a YAML sequence.
func MarshalRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return yaml.Marshal(records)
}

// UnmarshalRecords parses a YAML sequence of records and validates each.
func UnmarshalRecords(data []byte) ([]Record, error) {
	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse records: %w", err)
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return records, nil
}

// WriteRecords writes records as YAML, zstd-compressed when compress is set.
func WriteRecords(w io.Writer, records []Record, compress bool) error {
	data, err := MarshalRecords(records)
	if err != nil {
		return err
	}
	if !compress {
		_, err = w.Write(data)
		return err
	}

	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return fmt.Errorf("failed to write compressed records: %w", err)
	}
	return zw.Close()
}

// ReadRecords reads what WriteRecords wrote, compressed or not.
func ReadRecords(r io.Reader) ([]Record, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read records: %w", err)
	}

	var src io.Reader = br
	if bytes.Equal(head, zstdMagic) {
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd reader: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return UnmarshalRecords(data)
}
