package ton

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/xssnick/tonutils-go/address"
)

const (
	// TonProofPrefix is the fixed prefix of a TON Connect proof message.
	// https://docs.ton.org/develop/dapps/ton-connect/sign#checking-ton_proof-on-server-side
	TonProofPrefix = "ton-proof-item-v2/"

	// TonConnectPrefix precedes the SHA256 of the message.
	TonConnectPrefix = "ton-connect"

	// MaxProofAge bounds replay of a captured proof.
	MaxProofAge = 5 * time.Minute
)

// ProofData is what the client posts after tonconnect returns ton_proof.
type ProofData struct {
	Address   string `json:"address"`
	Network   string `json:"network"`    // "-239" = mainnet, "-3" = testnet
	PublicKey string `json:"public_key"` // hex
	Proof     Proof  `json:"proof"`
	StateInit string `json:"state_init,omitempty"` // base64 BOC
}

type Proof struct {
	Timestamp int64       `json:"timestamp"`
	Domain    ProofDomain `json:"domain"`
	Payload   string      `json:"payload"`   // server issued nonce
	Signature string      `json:"signature"` // base64 or hex
}

type ProofDomain struct {
	LengthBytes int    `json:"lengthBytes"`
	Value       string `json:"value"`
}

// VerifyProof checks a TON Connect proof signature.
//
//	message = "ton-proof-item-v2/" ++ workchain(4 LE) ++ hash(32)
//	          ++ domain_len(4 LE) ++ domain ++ timestamp(8 LE) ++ payload
//	signature_message = 0xffff ++ "ton-connect" ++ sha256(message)
//	ed25519.Verify(public_key, sha256(signature_message), signature)
func VerifyProof(pubKeyHex string, addr *address.Address, proof Proof, allowedDomains []string, now time.Time) error {
	proofTime := time.Unix(proof.Timestamp, 0)
	if now.Sub(proofTime) > MaxProofAge {
		return fmt.Errorf("proof expired: %s old", now.Sub(proofTime).Round(time.Second))
	}
	if proofTime.After(now.Add(time.Minute)) {
		return fmt.Errorf("proof timestamp is in the future")
	}

	if !isDomainAllowed(proof.Domain.Value, allowedDomains) {
		return fmt.Errorf("domain %q not in allowed list", proof.Domain.Value)
	}

	pubKey, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return fmt.Errorf("invalid public key hex: %w", err)
	}
	if len(pubKey) != ed25519.PublicKeySize {
		return fmt.Errorf("invalid public key size: %d", len(pubKey))
	}

	sig, err := decodeSignature(proof.Signature)
	if err != nil {
		return err
	}

	msgHash := sha256.Sum256(ProofMessage(addr, proof))

	signatureMessage := []byte{0xff, 0xff}
	signatureMessage = append(signatureMessage, []byte(TonConnectPrefix)...)
	signatureMessage = append(signatureMessage, msgHash[:]...)
	finalHash := sha256.Sum256(signatureMessage)

	if !ed25519.Verify(pubKey, finalHash[:], sig) {
		return fmt.Errorf("invalid signature")
	}
	return nil
}

// ProofMessage builds the signed message body for addr and proof.
func ProofMessage(addr *address.Address, proof Proof) []byte {
	message := []byte(TonProofPrefix)

	wcBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(wcBytes, uint32(addr.Workchain()))
	message = append(message, wcBytes...)
	message = append(message, addr.Data()...)

	domainLenBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(domainLenBytes, uint32(proof.Domain.LengthBytes))
	message = append(message, domainLenBytes...)
	message = append(message, []byte(proof.Domain.Value)...)

	tsBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(tsBytes, uint64(proof.Timestamp))
	message = append(message, tsBytes...)

	return append(message, []byte(proof.Payload)...)
}

// decodeSignature accepts the base64 wallets send as well as hex.
func decodeSignature(s string) ([]byte, error) {
	if sig, err := base64.StdEncoding.DecodeString(s); err == nil && len(sig) == ed25519.SignatureSize {
		return sig, nil
	}
	sig, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid signature encoding")
	}
	if len(sig) != ed25519.SignatureSize {
		return nil, fmt.Errorf("invalid signature size: %d", len(sig))
	}
	return sig, nil
}

func isDomainAllowed(domain string, allowed []string) bool {
	if len(allowed) == 0 {
		return true // пустой список: dev mode
	}
	for _, d := range allowed {
		if d == domain {
			return true
		}
	}
	return false
}
