//go:build !linux

package durable

import "golang.org/x/sys/unix"

func syncAll() error {
	return unix.Sync()
}
