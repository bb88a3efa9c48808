package trie

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/consensusdb/atrie/log"
)

// Serializer produces and parses the two wire shapes a Map needs: WIRE
// (peer-to-peer, hash omitted since the receiver already has or is
// verifying it) and PREFIX (canonical storage, hash embedded so a local
// read need not be told the expected hash out of band).
type Serializer interface {
	// Encode renders n in the given format.
	Encode(n Node, format Format) ([]byte, error)
	// Decode parses data into a Node. depth is the position the node is
	// claimed to occupy (RLPSerializer ignores it: a versioned node's
	// own depth travels in its encoding); when
	// expectedHash is nonzero and strict is true, a hash mismatch is a
	// hard error rather than merely reported via the returned node's
	// own (possibly wrong) hash.
	Decode(data []byte, depth int, format Format, expectedHash Hash, strict bool) (Node, error)
}

// wireNode is the RLP-encodable shape shared by both formats. rlp
// requires struct fields to encode in declaration order, so Hash sits
// last: it is simply omitted (zero-length) for FormatWire.
type wireNode struct {
	Kind        uint8
	Depth       uint64
	Key         []byte
	Branches    [][]byte
	ItemKey     []byte
	ItemPayload []byte
	Hash        []byte
}

const (
	kindInner   uint8 = 0
	kindLeaf    uint8 = 1
	kindInnerV2 uint8 = 2
)

// RLPSerializer implements Serializer using github.com/ethereum/go-ethereum/rlp
// for compact, deterministic node encoding.
type RLPSerializer struct {
	log *log.Logger
}

// NewRLPSerializer builds the default Serializer.
func NewRLPSerializer() *RLPSerializer {
	return &RLPSerializer{log: log.Default().Module("serializer")}
}

func (s *RLPSerializer) Encode(n Node, format Format) ([]byte, error) {
	var w wireNode
	switch node := n.(type) {
	case *LeafNode:
		w.Kind = kindLeaf
		if node.item != nil {
			w.ItemKey = node.item.Key.Bytes()
			w.ItemPayload = node.item.Payload
		}
	case *InnerNode:
		if node.versioned {
			w.Kind = kindInnerV2
			w.Depth = uint64(node.ownID.Depth())
			w.Key = node.ownID.Key().Bytes()
		} else {
			w.Kind = kindInner
		}
		w.Branches = make([][]byte, BranchFactor)
		for i := 0; i < BranchFactor; i++ {
			w.Branches[i] = node.branches[i].hash.Bytes()
		}
	default:
		return nil, ErrDecode
	}
	if format == FormatPrefix {
		w.Hash = n.Hash().Bytes()
	}
	return rlp.EncodeToBytes(&w)
}

func (s *RLPSerializer) Decode(data []byte, depth int, format Format, expectedHash Hash, strict bool) (Node, error) {
	var w wireNode
	if err := rlp.DecodeBytes(data, &w); err != nil {
		return nil, ErrDecode
	}

	var n Node
	switch w.Kind {
	case kindLeaf:
		item := &Item{Payload: w.ItemPayload}
		item.Key.SetBytes(w.ItemKey)
		hash := leafHash(item)
		n = newLeafNodeWithHash(hash, item)
	case kindInner, kindInnerV2:
		if len(w.Branches) != BranchFactor {
			return nil, ErrDecode
		}
		var inner *InnerNode
		if w.Kind == kindInnerV2 {
			var key Hash
			key.SetBytes(w.Key)
			inner = NewVersionedInnerNode(NewNodeID(int(w.Depth), key))
		} else {
			inner = NewInnerNode()
		}
		for i := 0; i < BranchFactor; i++ {
			var h Hash
			h.SetBytes(w.Branches[i])
			inner.SetBranch(i, h, nil)
		}
		inner.RecomputeHash()
		n = inner
	default:
		return nil, ErrDecode
	}

	if !n.IsValid() {
		return nil, ErrDecode
	}

	if format == FormatPrefix && len(w.Hash) > 0 {
		var stored Hash
		stored.SetBytes(w.Hash)
		if stored != n.Hash() {
			s.log.Warn("decoded node hash disagrees with embedded storage hash", "computed", n.Hash(), "stored", stored)
			return nil, ErrHashMismatch
		}
	}

	if strict && !expectedHash.IsZero() && n.Hash() != expectedHash {
		return nil, ErrHashMismatch
	}

	return n, nil
}
