package reward

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/pelletier/go-toml"
)

// Schedule maps a final daily rank to the coins it earns. Unlisted ranks earn nothing.
type Schedule map[int]int64

// DefaultSchedule pays the podium: 3, 2 and 1 coins.
func DefaultSchedule() Schedule {
	return Schedule{1: 3, 2: 2, 3: 1}
}

// Coins returns the payout for rank; a nil rank pays zero.
func (s Schedule) Coins(rank *int) int64 {
	if rank == nil {
		return 0
	}
	return s[*rank]
}

// LoadSchedule reads a TOML file of the form
//
//	[ranks]
//	1 = 5
//	2 = 3
//
// An empty path yields DefaultSchedule.
func LoadSchedule(path string) (Schedule, error) {
	if path == "" {
		return DefaultSchedule(), nil
	}
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load reward schedule: %w", err)
	}
	return scheduleFromTree(tree)
}

// ParseSchedule is LoadSchedule for in-memory TOML.
func ParseSchedule(data []byte) (Schedule, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse reward schedule: %w", err)
	}
	return scheduleFromTree(tree)
}

func scheduleFromTree(tree *toml.Tree) (Schedule, error) {
	ranks, ok := tree.Get("ranks").(*toml.Tree)
	if !ok {
		return nil, fmt.Errorf("reward schedule: missing [ranks] table")
	}

	s := Schedule{}
	for _, key := range ranks.Keys() {
		rank, err := strconv.Atoi(key)
		if err != nil || rank < 1 {
			return nil, fmt.Errorf("reward schedule: invalid rank %q", key)
		}
		coins, ok := ranks.Get(key).(int64)
		if !ok || coins < 0 {
			return nil, fmt.Errorf("reward schedule: rank %d needs a non-negative integer", rank)
		}
		s[rank] = coins
	}
	return s, nil
}

// String renders the schedule back to TOML.
func (s Schedule) String() string {
	ranks := make(map[string]interface{}, len(s))
	keys := make([]int, 0, len(s))
	for r := range s {
		keys = append(keys, r)
	}
	sort.Ints(keys)
	for _, r := range keys {
		ranks[strconv.Itoa(r)] = s[r]
	}
	tree, err := toml.TreeFromMap(map[string]interface{}{"ranks": ranks})
	if err != nil {
		return ""
	}
	return tree.String()
}
