// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notify

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// PublishBlockResult publishes a per-block validation outcome on
// TopicBlock: the block hash, whether it passed, and the failure reason
// when it did not. Callers invoke it once per validated block, after the
// sanity checks have run.
func PublishBlockResult(h *Hub, hash chainhash.Hash, err error) {
	payload := struct {
		Hash   string `json:"hash"`
		Valid  bool   `json:"valid"`
		Reason string `json:"reason,omitempty"`
	}{
		Hash:  hash.String(),
		Valid: err == nil,
	}
	if err != nil {
		payload.Reason = err.Error()
	}
	h.Publish(Notification{
		Topic:   TopicBlock,
		Kind:    "validation",
		Payload: payload,
	})
}
