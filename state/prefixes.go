package state

import (
	"encoding/hex"
	"fmt"
)

// Key layout for the persisted ledger. Identifiers coming from callers are
// opaque strings, so composite keys length-prefix each part to keep the
// mapping injective.

func balanceKey(addr [20]byte) []byte {
	return []byte("token/balance/" + hex.EncodeToString(addr[:]))
}

func allowanceKey(owner, spender [20]byte) []byte {
	return []byte("token/allowance/" + hex.EncodeToString(owner[:]) + "/" + hex.EncodeToString(spender[:]))
}

func nonceKey(addr [20]byte) []byte {
	return []byte("token/nonce/" + hex.EncodeToString(addr[:]))
}

func supplyKey() []byte {
	return []byte("token/supply")
}

func serviceKey(name string) []byte {
	return []byte(fmt.Sprintf("distributor/service/%d:%s", len(name), name))
}

func charityKey() []byte {
	return []byte("distributor/charity")
}

func merchantKey(id string) []byte {
	return []byte(fmt.Sprintf("gateway/merchant/%d:%s", len(id), id))
}

func transactionKey(merchantID, txID string) []byte {
	return []byte(fmt.Sprintf("gateway/tx/%d:%s/%d:%s", len(merchantID), merchantID, len(txID), txID))
}

func vestingCollectedKey(pool [20]byte) []byte {
	return []byte("vesting/collected/" + hex.EncodeToString(pool[:]))
}

func stakingOpenKey(pool [20]byte) []byte {
	return []byte("staking/open/" + hex.EncodeToString(pool[:]))
}

func stakingLockedKey(pool [20]byte) []byte {
	return []byte("staking/locked/" + hex.EncodeToString(pool[:]))
}

func stakingStakesKey(pool, addr [20]byte) []byte {
	return []byte("staking/stakes/" + hex.EncodeToString(pool[:]) + "/" + hex.EncodeToString(addr[:]))
}
