package calculator

import (
	"sort"

	"github.com/mmynk/splitvision/internal/models"
)

// settleEpsilon avoids floating point noise below one cent.
const settleEpsilon = 0.01

type balance struct {
	name   string
	amount float64
	rank   int
}

// SettleUp turns per-person settlements and recorded payments into a list of
// transfers that clears every balance.
//
// Algorithm:
//   - net balance = paid - owed, per person
//   - creditors (net > 0) and debtors (net < 0) are sorted largest first
//   - greedy matching: each step settles min(debt, credit) between the current
//     debtor and creditor, then moves past whoever reached zero
//
// Ties keep the order people first appear in settlements, then payments.
// Transfers under one cent are dropped.
func SettleUp(settlements []models.PersonSettlement, payments []models.Payment) []models.Transfer {
	net := make(map[string]float64)
	rank := make(map[string]int)
	see := func(name string) {
		if _, ok := rank[name]; !ok {
			rank[name] = len(rank)
		}
	}

	for _, s := range settlements {
		see(s.Name)
		net[s.Name] -= s.TotalOwed
	}
	for _, p := range payments {
		see(p.Name)
		net[p.Name] += p.Amount
	}

	var creditors, debtors []balance
	for name, amount := range net {
		switch {
		case amount > settleEpsilon:
			creditors = append(creditors, balance{name: name, amount: amount, rank: rank[name]})
		case amount < -settleEpsilon:
			debtors = append(debtors, balance{name: name, amount: -amount, rank: rank[name]})
		}
	}
	byAmount := func(list []balance) {
		sort.Slice(list, func(i, j int) bool {
			if list[i].amount != list[j].amount {
				return list[i].amount > list[j].amount
			}
			return list[i].rank < list[j].rank
		})
	}
	byAmount(creditors)
	byAmount(debtors)

	var transfers []models.Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := debtors[i].amount
		if creditors[j].amount < amount {
			amount = creditors[j].amount
		}

		if amount > settleEpsilon {
			transfers = append(transfers, models.Transfer{
				From:   debtors[i].name,
				To:     creditors[j].name,
				Amount: amount,
			})
		}

		debtors[i].amount -= amount
		creditors[j].amount -= amount

		if debtors[i].amount < settleEpsilon {
			i++
		}
		if creditors[j].amount < settleEpsilon {
			j++
		}
	}
	return transfers
}
