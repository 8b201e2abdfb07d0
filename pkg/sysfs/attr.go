// Package sysfs reads and writes scalar kernel attributes exposed as
// one-line text files under /sys.
package sysfs

import (
	"os"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ReadString returns the trimmed contents of an attribute file.
func ReadString(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", pkgerrors.Wrapf(err, "failed to read attribute %s", path)
	}
	return strings.TrimSpace(string(b)), nil
}

// ReadInt32 parses an attribute as a signed decimal integer.
func ReadInt32(path string) (int32, error) {
	s, err := ReadString(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to parse attribute %s value %q", path, s)
	}
	return int32(v), nil
}

// ReadUint32 parses an attribute as an unsigned decimal integer.
func ReadUint32(path string) (uint32, error) {
	s, err := ReadString(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to parse attribute %s value %q", path, s)
	}
	return uint32(v), nil
}

// ReadInt parses an attribute as a signed decimal integer of native size.
func ReadInt(path string) (int, error) {
	s, err := ReadString(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, pkgerrors.Wrapf(err, "failed to parse attribute %s value %q", path, s)
	}
	return v, nil
}

// ReadBool parses a 0/1 attribute.
func ReadBool(path string) (bool, error) {
	v, err := ReadInt(path)
	if err != nil {
		return false, err
	}
	return v == 1, nil
}

// WriteUint32 writes an unsigned decimal value, newline-terminated as the
// kernel expects.
func WriteUint32(path string, v uint32) error {
	logrus.Tracef("writing %d to %s", v, path)
	err := os.WriteFile(path, []byte(strconv.FormatUint(uint64(v), 10)+"\n"), 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to write attribute %s", path)
	}
	return nil
}

// WriteBool writes a 0/1 attribute.
func WriteBool(path string, v bool) error {
	s := "0"
	if v {
		s = "1"
	}
	logrus.Tracef("writing %s to %s", s, path)
	err := os.WriteFile(path, []byte(s), 0644)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to write attribute %s", path)
	}
	return nil
}
