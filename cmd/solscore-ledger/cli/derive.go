package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/solscore-labs/solscore-ledger/internal/derive"
)

func DeriveCmd() *cobra.Command {
	var (
		owner     string
		sequence  uint64
		programID string
	)

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Prints the derived address and bump of every ledger record",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := solana.PublicKeyFromBase58(programID)
			if err != nil {
				return fmt.Errorf("invalid program id: %w", err)
			}

			var ownerKey *solana.PublicKey
			if owner != "" {
				pk, err := solana.PublicKeyFromBase58(owner)
				if err != nil {
					return fmt.Errorf("invalid owner: %w", err)
				}
				ownerKey = &pk
			}

			return printDerived(derive.New(program), ownerKey, sequence)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "owner public key for per-user records")
	cmd.Flags().Uint64Var(&sequence, "sequence", 0, "stake sequence number")
	cmd.Flags().StringVar(&programID, "program-id", derive.DefaultProgramID.String(), "program id the addresses are derived under")

	return cmd
}

func printDerived(d *derive.Deriver, owner *solana.PublicKey, sequence uint64) error {
	type row struct {
		name   string
		derive func() (derive.Authority, error)
	}
	rows := []row{
		{"global-config", d.GlobalConfig},
		{"stake-config", d.StakeConfig},
		{"stake-vault", d.StakeVault},
		{"reward-config", d.RewardConfig},
		{"reward-pool", d.RewardPool},
		{"reward-vault", d.RewardVault},
		{"treasury", d.Treasury},
		{"treasury-vault", d.TreasuryVault},
	}
	if owner != nil {
		rows = append(rows,
			row{"user", func() (derive.Authority, error) { return d.User(*owner) }},
			row{"stake-counter", func() (derive.Authority, error) { return d.StakeCounter(*owner) }},
			row{fmt.Sprintf("stake #%d", sequence), func() (derive.Authority, error) { return d.Stake(*owner, sequence) }},
		)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RECORD\tADDRESS\tBUMP")
	for _, r := range rows {
		authority, err := r.derive()
		if err != nil {
			return fmt.Errorf("failed to derive %s: %w", r.name, err)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", r.name, authority.Address, authority.Bump)
	}
	return w.Flush()
}
