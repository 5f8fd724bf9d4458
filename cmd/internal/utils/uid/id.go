// Package uid hands out time-ordered snowflake ids for change log entries.
package uid

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu   sync.RWMutex
	node *snowflake.Node
)

// Init sets the node used by Generate. machineID must fit in 10 bits.
func Init(machineID int64) error {
	n, err := snowflake.NewNode(machineID)
	if err != nil {
		return err
	}

	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

// Generate returns 0 until Init was called, which lets the database pick
// the id instead.
func Generate() int64 {
	mu.RLock()
	defer mu.RUnlock()
	if node == nil {
		return 0
	}
	return node.Generate().Int64()
}
