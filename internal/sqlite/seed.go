package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/vgs/pkg/types"
)

// SeedOptions controls the sample grants produced by Seed.
type SeedOptions struct {
	Label            string    // Distinguishes runs; ids derive from it and the row position.
	Triggers         int       // Number of distinct trigger ids.
	BodiesPerTrigger int       // Grant bodies per trigger.
	TokensPerBody    int       // Spend statuses per body.
	RedeemEvery      int       // Every Nth token is marked redeemed; 0 disables.
	Now              time.Time // Redemption timestamp; zero means time.Now().
}

// SeedResult lists the identifiers Seed wrote.
type SeedResult struct {
	TriggerIDs []string
	Bodies     []types.GrantBody
	Statuses   []types.GrantSpendStatus
}

// seedNamespace roots the name-based ids of seeded rows.
var seedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/mesh-intelligence/vgs/seed"))

// seedID returns a UUID v5 for one seeded row. The same label and path always
// give the same id.
func seedID(label string, path ...any) string {
	name := label
	for _, p := range path {
		name += fmt.Sprintf("/%v", p)
	}
	return uuid.NewSHA1(seedNamespace, []byte(name)).String()
}

// Seed inserts sample grants through exec in one transaction. It is meant
// for exercising backups and migrations against a realistic data set.
// Identifiers are derived from Label and each row's position, so the same
// options produce the same rows; seeding one store twice needs distinct
// labels.
func Seed(ctx context.Context, exec types.Executor, opts SeedOptions) (SeedResult, error) {
	if opts.Triggers <= 0 || opts.BodiesPerTrigger <= 0 {
		return SeedResult{}, fmt.Errorf("%w: seed needs at least one trigger and one body", types.ErrInvalidConfig)
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	var res SeedResult
	var tx types.Transaction
	bodyInsert := types.InsertSQL(types.GrantBodiesTable, types.GrantBodyColumns)
	statusInsert := types.InsertSQL(types.GrantSpendStatusesTable, types.GrantSpendStatusColumns)

	n := 0
	for t := 0; t < opts.Triggers; t++ {
		triggerID := seedID(opts.Label, "trigger", t)
		res.TriggerIDs = append(res.TriggerIDs, triggerID)
		for b := 0; b < opts.BodiesPerTrigger; b++ {
			body := types.GrantBody{
				CredsID:      seedID(opts.Label, "body", t, b),
				TriggerID:    types.Ptr(triggerID),
				TriggerType:  types.Ptr(int64(t % 3)),
				Creds:        types.Ptr(fmt.Sprintf(`["cred-%d-%d"]`, t, b)),
				BlindedCreds: types.Ptr(fmt.Sprintf(`["blinded-%d-%d"]`, t, b)),
				SignedCreds:  types.Ptr(fmt.Sprintf(`["signed-%d-%d"]`, t, b)),
				PublicKey:    types.Ptr(fmt.Sprintf("pk-%d", t)),
				BatchProof:   types.Ptr(fmt.Sprintf("proof-%d-%d", t, b)),
				Status:       types.Ptr(int64(1)),
			}
			res.Bodies = append(res.Bodies, body)
			tx.Execute(bodyInsert, body.Values()...)

			for k := 0; k < opts.TokensPerBody; k++ {
				n++
				// Unspent tokens keep NULL redemption columns.
				status := types.GrantSpendStatus{
					TokenID: seedID(opts.Label, "token", t, b, k),
					CredsID: types.Ptr(body.CredsID),
				}
				if opts.RedeemEvery > 0 && n%opts.RedeemEvery == 0 {
					status.RedeemedAt = types.Ptr(now.Unix())
					status.RedeemType = types.Ptr(int64(1))
				}
				res.Statuses = append(res.Statuses, status)
				tx.Execute(statusInsert, status.Values()...)
			}
		}
	}

	if _, err := exec.ExecuteTransaction(ctx, tx); err != nil {
		return SeedResult{}, fmt.Errorf("seeding grants: %w", err)
	}
	return res, nil
}
