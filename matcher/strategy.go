package matcher

import "context"

// Level names the fallback tier that produced a count.
type Level string

const (
	LevelExact      Level = "exact"
	LevelOwner      Level = "owner"
	LevelClientRole Level = "client_role"
	LevelNone       Level = "none"
)

// Query selects candidate records for one fallback tier. Empty PlanName or
// Owner means the field is not part of the match.
type Query struct {
	ClientID uint
	PlanName string
	Owner    string
	Role     string
	Level    Level
}

// Strategy is one rung of the fallback ladder. Build returns ok=false when
// the rung cannot apply (e.g. the plan has no recorded owner).
type Strategy interface {
	Level() Level
	Build(ctx context.Context, src Source, clientID uint, req Request) (q Query, ok bool, err error)
}

// ExactMatch matches client, exact plan name and exact role.
type ExactMatch struct{}

func (ExactMatch) Level() Level { return LevelExact }

func (ExactMatch) Build(_ context.Context, _ Source, clientID uint, req Request) (Query, bool, error) {
	return Query{ClientID: clientID, PlanName: req.PlanName, Role: req.Role, Level: LevelExact}, true, nil
}

// OwnerMatch drops the plan name and matches on the plan owner as recorded
// in the candidate's free-text assigned-to field.
type OwnerMatch struct{}

func (OwnerMatch) Level() Level { return LevelOwner }

func (OwnerMatch) Build(ctx context.Context, src Source, clientID uint, req Request) (Query, bool, error) {
	owner, found, err := src.PlanOwner(ctx, req.PlanName)
	if err != nil {
		return Query{}, false, err
	}
	if !found || owner == "" {
		return Query{}, false, nil
	}
	return Query{ClientID: clientID, Owner: owner, Role: req.Role, Level: LevelOwner}, true, nil
}

// ClientRoleMatch matches on client and role only.
type ClientRoleMatch struct{}

func (ClientRoleMatch) Level() Level { return LevelClientRole }

func (ClientRoleMatch) Build(_ context.Context, _ Source, clientID uint, req Request) (Query, bool, error) {
	return Query{ClientID: clientID, Role: req.Role, Level: LevelClientRole}, true, nil
}

// DefaultLadder is exact → owner → client_role.
func DefaultLadder() []Strategy {
	return []Strategy{ExactMatch{}, OwnerMatch{}, ClientRoleMatch{}}
}
