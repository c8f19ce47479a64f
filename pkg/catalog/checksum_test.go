// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum_MatchesJoinRule(t *testing.T) {
	statements := []string{"CREATE TABLE t (id INT)", "INSERT INTO t VALUES (1)"}
	want := sha256.Sum256([]byte("CREATE TABLE t (id INT)\nINSERT INTO t VALUES (1)"))
	assert.Equal(t, hex.EncodeToString(want[:]), Checksum(statements))
}

func TestChecksum_Empty(t *testing.T) {
	want := sha256.Sum256([]byte(""))
	assert.Equal(t, hex.EncodeToString(want[:]), Checksum(nil))
}

func TestChecksum_OrderSensitive(t *testing.T) {
	a := Checksum([]string{"one", "two"})
	b := Checksum([]string{"two", "one"})
	assert.NotEqual(t, a, b)
}
