package handlers

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Klingon-tech/avash/internal/command"
	shellerr "github.com/Klingon-tech/avash/internal/errors"
	"github.com/Klingon-tech/avash/internal/node"
)

// addValidator field names.
const (
	fieldNodeID            = "nodeId"
	fieldStartTime         = "startTime"
	fieldEndTime           = "endTime"
	fieldStakeAmount       = "stakeAmount"
	fieldRewardAddress     = "rewardAddress"
	fieldDelegationFeeRate = "delegationFeeRate"
)

func (s *shell) platformCommands() []command.Command {
	return []command.Command{
		command.Interactive(&addValidatorModel{shell: s}),
	}
}

type addValidatorModel struct {
	shell *shell
}

func (m *addValidatorModel) Context() string       { return node.ContextPlatform }
func (m *addValidatorModel) Name() string          { return "addValidator" }
func (m *addValidatorModel) Help() string          { return "Add a validator to the Primary Network" }
func (m *addValidatorModel) RequireKeystore() bool { return true }

func (m *addValidatorModel) Fields() []command.Field {
	return []command.Field{
		{Name: fieldNodeID, Prompt: "Node ID", Default: m.shell.Node.NodeID()},
		{Name: fieldStartTime, Prompt: "Start Time (unix seconds or e.g. \"in 5 minutes\")"},
		{Name: fieldEndTime, Prompt: "End Time (unix seconds or e.g. \"in 30 days\")"},
		{Name: fieldStakeAmount, Prompt: "Stake Amount"},
		{Name: fieldRewardAddress, Prompt: "Reward Address"},
		{Name: fieldDelegationFeeRate, Prompt: "Delegation Fee Rate (percent)", Default: "2"},
	}
}

func (m *addValidatorModel) Run(ctx context.Context, a command.Answers) error {
	s := m.shell
	cred, err := s.activeCredentials()
	if err != nil {
		return err
	}

	start, err := a.Date(fieldStartTime)
	if err != nil {
		return shellerr.Wrap(shellerr.CodeValidation, "start time", err)
	}
	end, err := a.Date(fieldEndTime)
	if err != nil {
		return shellerr.Wrap(shellerr.CodeValidation, "end time", err)
	}
	stake, err := a.BigInt(fieldStakeAmount)
	if err != nil {
		return shellerr.Wrap(shellerr.CodeValidation, "stake amount", err)
	}
	fee, err := strconv.ParseFloat(a.String(fieldDelegationFeeRate), 64)
	if err != nil || fee < 0 || fee > 100 {
		return shellerr.New(shellerr.CodeValidation,
			fmt.Sprintf("delegation fee rate must be a percentage, got %q", a.String(fieldDelegationFeeRate)))
	}

	txID, err := s.Node.AddValidator(ctx, cred, node.AddValidatorArgs{
		NodeID:            a.String(fieldNodeID),
		StartTime:         start,
		EndTime:           end,
		StakeAmount:       stake,
		RewardAddress:     a.String(fieldRewardAddress),
		DelegationFeeRate: fee,
	})
	if err != nil {
		return remoteErr("add validator", err)
	}
	s.printf("Submitted transaction %s\n", txID)
	s.track(txID)
	return nil
}
