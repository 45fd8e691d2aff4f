package store

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// big.Int marshals as a bare JSON number, which JavaScript clients truncate
// above 2^53. Amounts and pool ids therefore cross the wire as decimal
// strings instead.

func bigToJSON(v *big.Int) *string {
	if v == nil {
		return nil
	}

	s := v.String()

	return &s
}

func bigFromJSON(s *string, field string) (*big.Int, error) {
	if s == nil {
		return nil, nil
	}

	v, ok := new(big.Int).SetString(*s, 10)
	if !ok {
		return nil, fmt.Errorf("invalid %s %q", field, *s)
	}

	return v, nil
}

func (p Pool) MarshalJSON() ([]byte, error) {
	type alias Pool

	return json.Marshal(struct {
		alias
		PoolID        string  `json:"poolId"`
		EntryFee      string  `json:"entryFee"`
		PrizePool     string  `json:"prizePool"`
		WinnerPrize   *string `json:"winnerPrize,omitempty"`
		CreatorReward *string `json:"creatorReward,omitempty"`
	}{
		alias:         alias(p),
		PoolID:        p.PoolID.String(),
		EntryFee:      p.EntryFee.String(),
		PrizePool:     p.PrizePool.String(),
		WinnerPrize:   bigToJSON(p.WinnerPrize),
		CreatorReward: bigToJSON(p.CreatorReward),
	})
}

func (p *Pool) UnmarshalJSON(data []byte) error {
	type alias Pool

	aux := struct {
		*alias
		PoolID        *string `json:"poolId"`
		EntryFee      *string `json:"entryFee"`
		PrizePool     *string `json:"prizePool"`
		WinnerPrize   *string `json:"winnerPrize"`
		CreatorReward *string `json:"creatorReward"`
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error

	if p.PoolID, err = bigFromJSON(aux.PoolID, "poolId"); err != nil {
		return err
	}
	if p.EntryFee, err = bigFromJSON(aux.EntryFee, "entryFee"); err != nil {
		return err
	}
	if p.PrizePool, err = bigFromJSON(aux.PrizePool, "prizePool"); err != nil {
		return err
	}
	if p.WinnerPrize, err = bigFromJSON(aux.WinnerPrize, "winnerPrize"); err != nil {
		return err
	}
	if p.CreatorReward, err = bigFromJSON(aux.CreatorReward, "creatorReward"); err != nil {
		return err
	}

	return nil
}

func (p Player) MarshalJSON() ([]byte, error) {
	type alias Player

	return json.Marshal(struct {
		alias
		PoolID string `json:"poolId"`
	}{alias: alias(p), PoolID: p.PoolID.String()})
}

func (p *Player) UnmarshalJSON(data []byte) error {
	type alias Player

	aux := struct {
		*alias
		PoolID *string `json:"poolId"`
	}{alias: (*alias)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	p.PoolID, err = bigFromJSON(aux.PoolID, "poolId")

	return err
}

func (r Round) MarshalJSON() ([]byte, error) {
	type alias Round

	return json.Marshal(struct {
		alias
		PoolID string `json:"poolId"`
	}{alias: alias(r), PoolID: r.PoolID.String()})
}

func (r *Round) UnmarshalJSON(data []byte) error {
	type alias Round

	aux := struct {
		*alias
		PoolID *string `json:"poolId"`
	}{alias: (*alias)(r)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	r.PoolID, err = bigFromJSON(aux.PoolID, "poolId")

	return err
}

func (c Creator) MarshalJSON() ([]byte, error) {
	type alias Creator

	return json.Marshal(struct {
		alias
		StakedAmount string `json:"stakedAmount"`
		TotalRewards string `json:"totalRewards"`
	}{
		alias:        alias(c),
		StakedAmount: c.StakedAmount.String(),
		TotalRewards: c.TotalRewards.String(),
	})
}

func (c *Creator) UnmarshalJSON(data []byte) error {
	type alias Creator

	aux := struct {
		*alias
		StakedAmount *string `json:"stakedAmount"`
		TotalRewards *string `json:"totalRewards"`
	}{alias: (*alias)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error

	if c.StakedAmount, err = bigFromJSON(aux.StakedAmount, "stakedAmount"); err != nil {
		return err
	}
	if c.TotalRewards, err = bigFromJSON(aux.TotalRewards, "totalRewards"); err != nil {
		return err
	}

	return nil
}

func (g GlobalStats) MarshalJSON() ([]byte, error) {
	type alias GlobalStats

	return json.Marshal(struct {
		alias
		TotalMonStaked     string `json:"totalMonStaked"`
		ProjectPoolBalance string `json:"projectPoolBalance"`
	}{
		alias:              alias(g),
		TotalMonStaked:     g.TotalMonStaked.String(),
		ProjectPoolBalance: g.ProjectPoolBalance.String(),
	})
}

func (g *GlobalStats) UnmarshalJSON(data []byte) error {
	type alias GlobalStats

	aux := struct {
		*alias
		TotalMonStaked     *string `json:"totalMonStaked"`
		ProjectPoolBalance *string `json:"projectPoolBalance"`
	}{alias: (*alias)(g)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error

	if g.TotalMonStaked, err = bigFromJSON(aux.TotalMonStaked, "totalMonStaked"); err != nil {
		return err
	}
	if g.ProjectPoolBalance, err = bigFromJSON(aux.ProjectPoolBalance, "projectPoolBalance"); err != nil {
		return err
	}

	return nil
}
