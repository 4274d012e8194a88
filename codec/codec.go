// Package codec encodes generated dungeons for the wire and computes their
// fingerprints.
package codec

import (
	"crypto/ecdsa"
	"strings"

	"github.com/aukilabs/dvergr/generation"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/segmentio/encoding/json"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Format is a wire format.
type Format string

const (
	FormatJSON  Format = "json"
	FormatProto Format = "proto"

	ErrTypeUnsupportedFormat = "unsupported_format"
	ErrTypeEncoding          = "encoding_error"
	ErrTypeSignature         = "signature_error"
)

// ParseFormat returns the format with the given name. An empty name is JSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatJSON:
		return FormatJSON, nil

	case FormatProto:
		return FormatProto, nil

	default:
		return "", errors.New("unsupported format").
			WithType(ErrTypeUnsupportedFormat).
			WithTag("format", s)
	}
}

// ContentType returns the HTTP content type of the format.
func (f Format) ContentType() string {
	if f == FormatProto {
		return "application/x-protobuf"
	}
	return "application/json"
}

// Marshal encodes v with the given format. Protobuf encoding goes through a
// structpb.Struct built from the JSON representation of v.
func Marshal(f Format, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.New("json encoding failed").
			WithType(ErrTypeEncoding).
			Wrap(err)
	}

	if f != FormatProto {
		return b, nil
	}

	s, err := ToStruct(b)
	if err != nil {
		return nil, err
	}

	b, err = proto.MarshalOptions{Deterministic: true}.Marshal(s)
	if err != nil {
		return nil, errors.New("protobuf encoding failed").
			WithType(ErrTypeEncoding).
			Wrap(err)
	}
	return b, nil
}

// ToStruct converts a JSON value to a protobuf struct. Values that are not
// objects are set under the "items" key.
func ToStruct(b []byte) (*structpb.Struct, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, errors.New("json decoding failed").
			WithType(ErrTypeEncoding).
			Wrap(err)
	}

	m, ok := v.(map[string]any)
	if !ok {
		m = map[string]any{"items": v}
	}

	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, errors.New("protobuf struct conversion failed").
			WithType(ErrTypeEncoding).
			Wrap(err)
	}
	return s, nil
}

// UnmarshalProto decodes a protobuf struct encoded by Marshal into v.
func UnmarshalProto(b []byte, v any) error {
	var s structpb.Struct
	if err := proto.Unmarshal(b, &s); err != nil {
		return errors.New("protobuf decoding failed").
			WithType(ErrTypeEncoding).
			Wrap(err)
	}

	j, err := s.MarshalJSON()
	if err != nil {
		return errors.New("protobuf struct conversion failed").
			WithType(ErrTypeEncoding).
			Wrap(err)
	}

	if err := json.Unmarshal(j, v); err != nil {
		return errors.New("json decoding failed").
			WithType(ErrTypeEncoding).
			Wrap(err)
	}
	return nil
}

// Fingerprint returns the Keccak-256 hash of the JSON encoding of the dungeon
// layout, partition trees excluded. Dungeons generated from the same seed and
// catalog have the same fingerprint.
func Fingerprint(d *generation.DungeonInstance) (string, error) {
	b, err := json.Marshal(d.WithoutTrees())
	if err != nil {
		return "", errors.New("json encoding failed").
			WithType(ErrTypeEncoding).
			Wrap(err)
	}
	return crypto.Keccak256Hash(b).Hex(), nil
}

// Signer signs dungeon fingerprints with a secp256k1 key.
type Signer struct {
	key *ecdsa.PrivateKey
}

// NewSigner creates a signer from a hex encoded private key.
func NewSigner(hexKey string) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexKey, "0x"))
	if err != nil {
		return nil, errors.New("invalid private key").
			WithType(ErrTypeSignature).
			Wrap(err)
	}
	return &Signer{key: key}, nil
}

// Address returns the address of the signing key.
func (s *Signer) Address() string {
	return strings.ToLower(crypto.PubkeyToAddress(s.key.PublicKey).Hex())
}

// Sign signs a fingerprint returned by Fingerprint.
func (s *Signer) Sign(fingerprint string) (string, error) {
	sig, err := crypto.Sign(common.HexToHash(fingerprint).Bytes(), s.key)
	if err != nil {
		return "", errors.New("signing fingerprint failed").
			WithType(ErrTypeSignature).
			Wrap(err)
	}
	return hexutil.Encode(sig), nil
}

// RecoverAddress returns the address that produced the signature of the given
// fingerprint.
func RecoverAddress(fingerprint, signature string) (string, error) {
	pub, err := crypto.SigToPub(common.HexToHash(fingerprint).Bytes(), common.FromHex(signature))
	if err != nil {
		return "", errors.New("recovering signer failed").
			WithType(ErrTypeSignature).
			Wrap(err)
	}
	return strings.ToLower(crypto.PubkeyToAddress(*pub).Hex()), nil
}
