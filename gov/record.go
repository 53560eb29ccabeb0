package gov

import "crypto/sha256"

// NetworkVersion is the only envelope version this engine accepts
// (spec.md §3/§4.1).
const NetworkVersion uint8 = 0x01

// RecordType is the closed envelope-type enum (spec.md §9: "dispatch in
// the extractor is a tagged-union match, not runtime polymorphism").
type RecordType uint8

const (
	RecordNone     RecordType = 0
	RecordProposal RecordType = 1
	RecordVote     RecordType = 2
)

// VoteType is the closed vote-answer enum.
type VoteType uint8

const (
	VoteNo      VoteType = 0
	VoteYes     VoteType = 1
	VoteAbstain VoteType = 2
)

func (v VoteType) valid() bool {
	return v == VoteNo || v == VoteYes || v == VoteAbstain
}

// ParseVoteType converts a case-insensitive string to a VoteType. This
// supplements spec.md with the original implementation's
// voteTypeForString helper (original_source/governance.h).
func ParseVoteType(s string) (VoteType, bool) {
	switch lower(s) {
	case "yes":
		return VoteYes, true
	case "no":
		return VoteNo, true
	case "abstain":
		return VoteAbstain, true
	default:
		return 0, false
	}
}

// VoteTypeString renders a VoteType as a string. Resolves spec.md §9
// Open Question (1): the original's valid-flag bug (set false then
// unconditionally overwritten to true) is fixed here — valid is false
// on the default branch and true only on a matched branch.
func VoteTypeString(v VoteType) (string, bool) {
	switch v {
	case VoteYes:
		return "yes", true
	case VoteNo:
		return "no", true
	case VoteAbstain:
		return "abstain", true
	default:
		return "", false
	}
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

// Outpoint identifies a specific transaction output.
type Outpoint struct {
	Txid  [32]byte
	Index uint32
}

// VinHashSize is the truncated-hash length carried inside a vote to bind
// it to its carrier transaction (spec.md §3).
const VinHashSize = 12

type VinHash [VinHashSize]byte

// MakeVinHash computes the anti-replay binding for a prevout: the first
// 12 bytes of hash256(serialized prevout).
func MakeVinHash(prevout Outpoint) VinHash {
	buf := make([]byte, 0, 36)
	buf = append(buf, prevout.Txid[:]...)
	buf = appendU32LE(buf, prevout.Index)
	h := hash256(buf)
	var vh VinHash
	copy(vh[:], h[:VinHashSize])
	return vh
}

// Proposal is the decoded on-chain proposal record (spec.md §3).
type Proposal struct {
	Version     uint8
	Superblock  uint64
	Amount      int64
	Address     string
	Name        string
	URL         string
	Description string

	// BlockNumber is derived, not serialized: the height at which this
	// proposal was first observed.
	BlockNumber uint64
}

// IsZero reports whether p is the Go zero value, used in place of the
// original's isNull() pointer/sentinel check.
func (p Proposal) IsZero() bool {
	return p.Superblock == 0 && p.Name == "" && p.Amount == 0
}

// proposalSerializeBytes serializes the consensus-critical fields in the
// exact order spec.md §4.1 mandates: version, type, superblock, amount,
// address, name, url, description.
func proposalSerializeBytes(p Proposal) []byte {
	out := make([]byte, 0, 64+len(p.Address)+len(p.Name)+len(p.URL)+len(p.Description))
	out = append(out, NetworkVersion, byte(RecordProposal))
	out = appendU32LE(out, uint32(p.Superblock))
	out = appendI64LE(out, p.Amount)
	out = appendString(out, p.Address)
	out = appendString(out, p.Name)
	out = appendString(out, p.URL)
	out = appendString(out, p.Description)
	return out
}

// Hash is the proposal's identity hash: hash256 over its full
// serialization (spec.md §4.1).
func (p Proposal) Hash() [32]byte {
	return hash256(proposalSerializeBytes(p))
}

// EncodeProposal serializes a proposal for embedding in a carrier output.
func EncodeProposal(p Proposal) []byte {
	return proposalSerializeBytes(p)
}

// DecodeProposal parses a proposal envelope. b starts at the version
// byte, matching EncodeProposal's output; the version and type bytes are
// read and checked here.
func DecodeProposal(b []byte) (Proposal, error) {
	c := newCursor(b)
	version, err := c.readU8()
	if err != nil {
		return Proposal{}, err
	}
	typ, err := c.readU8()
	if err != nil {
		return Proposal{}, err
	}
	if version != NetworkVersion {
		return Proposal{}, govErr(ErrPolicyVersion, "bad proposal version")
	}
	if RecordType(typ) != RecordProposal {
		return Proposal{}, govErr(ErrPolicyType, "bad proposal type")
	}
	superblock, err := c.readU32LE()
	if err != nil {
		return Proposal{}, err
	}
	amount, err := c.readI64LE()
	if err != nil {
		return Proposal{}, err
	}
	address, err := c.readString()
	if err != nil {
		return Proposal{}, err
	}
	name, err := c.readString()
	if err != nil {
		return Proposal{}, err
	}
	url, err := c.readString()
	if err != nil {
		return Proposal{}, err
	}
	description, err := c.readString()
	if err != nil {
		return Proposal{}, err
	}
	return Proposal{
		Version:     version,
		Superblock:  uint64(superblock),
		Amount:      amount,
		Address:     address,
		Name:        name,
		URL:         url,
		Description: description,
	}, nil
}

// Vote is the decoded on-chain vote record (spec.md §3).
type Vote struct {
	Version  uint8
	Proposal [32]byte
	Vote     VoteType
	Utxo     Outpoint
	VinHash  VinHash
	Signature []byte

	// Derived fields, not serialized.
	PubKey      []byte
	Outpoint    Outpoint
	Time        int64
	Amount      int64
	KeyID       [20]byte
	BlockNumber uint64
	SpentBlock  uint64
	SpentTxHash [32]byte
}

// IsZero mirrors Proposal.IsZero for votes.
func (v Vote) IsZero() bool {
	return v.Utxo == Outpoint{} && v.Proposal == [32]byte{}
}

// Spent reports whether the vote's utxo has been recorded as spent.
func (v Vote) Spent() bool {
	return v.SpentBlock > 0
}

func voteSerializeBytes(v Vote, includeVote bool) []byte {
	out := make([]byte, 0, 2+32+1+36+VinHashSize+9+len(v.Signature))
	out = append(out, NetworkVersion, byte(RecordVote))
	out = append(out, v.Proposal[:]...)
	if includeVote {
		out = append(out, byte(v.Vote))
	}
	out = append(out, v.Utxo.Txid[:]...)
	out = appendU32LE(out, v.Utxo.Index)
	if includeVote {
		out = append(out, v.VinHash[:]...)
	}
	return out
}

// Hash is the vote's identity hash: hash256(version‖type‖proposal‖utxo),
// deliberately omitting the answer field so a vote change updates the
// same record (spec.md §4.1).
func (v Vote) Hash() [32]byte {
	return hash256(voteSerializeBytes(v, false))
}

// SigHash is the vote's signature hash:
// hash256(version‖type‖proposal‖vote‖utxo‖vinhash).
func (v Vote) SigHash() [32]byte {
	return hash256(voteSerializeBytes(v, true))
}

// EncodeVote serializes a vote's wire fields in the order spec.md §4.1
// mandates: version, type, proposal, vote, utxo, vinhash, signature.
func EncodeVote(v Vote) []byte {
	out := make([]byte, 0, 2+32+1+36+VinHashSize+9+len(v.Signature))
	out = append(out, NetworkVersion, byte(RecordVote))
	out = append(out, v.Proposal[:]...)
	out = append(out, byte(v.Vote))
	out = append(out, v.Utxo.Txid[:]...)
	out = appendU32LE(out, v.Utxo.Index)
	out = append(out, v.VinHash[:]...)
	out = appendBytes(out, v.Signature)
	return out
}

// DecodeVote parses a vote envelope. b starts at the version byte.
func DecodeVote(b []byte) (Vote, error) {
	c := newCursor(b)
	version, err := c.readU8()
	if err != nil {
		return Vote{}, err
	}
	typ, err := c.readU8()
	if err != nil {
		return Vote{}, err
	}
	if version != NetworkVersion {
		return Vote{}, govErr(ErrPolicyVersion, "bad vote version")
	}
	if RecordType(typ) != RecordVote {
		return Vote{}, govErr(ErrPolicyType, "bad vote type")
	}
	propBytes, err := c.readExact(32)
	if err != nil {
		return Vote{}, err
	}
	voteByte, err := c.readU8()
	if err != nil {
		return Vote{}, err
	}
	txidBytes, err := c.readExact(32)
	if err != nil {
		return Vote{}, err
	}
	outIdx, err := c.readU32LE()
	if err != nil {
		return Vote{}, err
	}
	vinhashBytes, err := c.readExact(VinHashSize)
	if err != nil {
		return Vote{}, err
	}
	sig, err := c.readBytes()
	if err != nil {
		return Vote{}, err
	}

	var prop [32]byte
	copy(prop[:], propBytes)
	var txid [32]byte
	copy(txid[:], txidBytes)
	var vh VinHash
	copy(vh[:], vinhashBytes)

	return Vote{
		Version:   version,
		Proposal:  prop,
		Vote:      VoteType(voteByte),
		Utxo:      Outpoint{Txid: txid, Index: outIdx},
		VinHash:   vh,
		Signature: sig,
	}, nil
}

// hash256 is the wire-format hash primitive: double SHA-256, the
// standard blockchain "hash256" construction named throughout spec.md's
// glossary. This is a fixed wire-format primitive dictated by the
// bit-exactness requirement in spec.md §6, not a policy choice — it
// stays on the standard library rather than any swappable provider.
func hash256(b []byte) [32]byte {
	first := sha256.Sum256(b)
	return sha256.Sum256(first[:])
}
