package node

import (
	"math/big"
	"time"
)

// Credentials are passed with every keystore-backed call.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type nodeIDResult struct {
	NodeID string `json:"nodeID"`
}

type usersResult struct {
	Users []string `json:"users"`
}

type successResult struct {
	Success bool `json:"success"`
}

type addressesResult struct {
	Addresses []string `json:"addresses"`
}

type addressResult struct {
	Address string `json:"address"`
}

type txIDResult struct {
	TxID string `json:"txID"`
}

type txStatusParams struct {
	TxID string `json:"txID"`
}

type txStatusResult struct {
	Status string `json:"status"`
}

// SendArgs describes an X-chain asset transfer.
type SendArgs struct {
	From    []string
	To      string
	Amount  *big.Int
	AssetID string
}

type sendParams struct {
	Credentials
	AssetID string   `json:"assetID"`
	Amount  string   `json:"amount"`
	To      string   `json:"to"`
	From    []string `json:"from,omitempty"`
}

// AddValidatorArgs describes a primary network validator registration.
type AddValidatorArgs struct {
	NodeID            string
	StartTime         time.Time
	EndTime           time.Time
	StakeAmount       *big.Int
	RewardAddress     string
	DelegationFeeRate float64
}

type addValidatorParams struct {
	Credentials
	NodeID            string  `json:"nodeID"`
	StartTime         string  `json:"startTime"`
	EndTime           string  `json:"endTime"`
	StakeAmount       string  `json:"stakeAmount"`
	RewardAddress     string  `json:"rewardAddress"`
	DelegationFeeRate float64 `json:"delegationFeeRate"`
}
