// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"encoding/json"
	"math/rand/v2"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/yashvikram30/staking/api/utils"
	"github.com/yashvikram30/staking/stake"
)

// MaxExpiryWindow bounds how far in the future an envelope may expire, and so
// how long the replay guard must remember it.
const MaxExpiryWindow = 10 * time.Minute

// Envelope is a request signed by its caller. Caller is the ed25519 public key.
// Nonce tells apart otherwise identical requests.
type Envelope struct {
	Caller    stake.Address   `json:"caller"`
	Expiry    uint64          `json:"expiry"`
	Nonce     uint64          `json:"nonce"`
	Payload   json.RawMessage `json:"payload"`
	Signature hexutil.Bytes   `json:"signature"`
}

// SigningHash is the message signed by the caller.
func SigningHash(op string, payload []byte, expiry, nonce uint64) stake.Address {
	var b [16]byte
	binary.BigEndian.PutUint64(b[:8], expiry)
	binary.BigEndian.PutUint64(b[8:], nonce)
	return stake.Blake2b([]byte(op), payload, b[:])
}

// id identifies the signed request for replay protection.
func (e *Envelope) id(op string) stake.Address {
	return stake.Blake2b(e.Caller.Bytes(), SigningHash(op, e.Payload, e.Expiry, e.Nonce).Bytes())
}

// Sign builds an envelope for op carrying payload.
func Sign(key ed25519.PrivateKey, op string, payload any, expiry time.Time) (*Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	env := &Envelope{
		Caller:  stake.BytesToAddress(key.Public().(ed25519.PublicKey)),
		Expiry:  uint64(expiry.Unix()),
		Nonce:   rand.Uint64(), //#nosec G404
		Payload: data,
	}
	hash := SigningHash(op, data, env.Expiry, env.Nonce)
	env.Signature = ed25519.Sign(key, hash.Bytes())
	return env, nil
}

// verify checks expiry and signature and decodes the payload into v.
func (e *Envelope) verify(op string, now time.Time, v any) error {
	if e.Expiry < uint64(now.Unix()) {
		return utils.Forbidden(errors.New("envelope expired"))
	}
	if e.Expiry > uint64(now.Add(MaxExpiryWindow).Unix()) {
		return utils.BadRequest(errors.New("envelope expiry too far in the future"))
	}
	if len(e.Signature) != ed25519.SignatureSize {
		return utils.BadRequest(errors.New("invalid signature length"))
	}
	hash := SigningHash(op, e.Payload, e.Expiry, e.Nonce)
	if !ed25519.Verify(ed25519.PublicKey(e.Caller.Bytes()), hash.Bytes(), e.Signature) {
		return utils.Forbidden(errors.New("invalid signature"))
	}
	if err := utils.ParseJSON(bytes.NewReader(e.Payload), v); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "payload"))
	}
	return nil
}
