package main

import (
	"fmt"
	"io"

	"clash-tracker/internal/domain"

	"github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
)

func renderPlayer(w io.Writer, p *domain.PlayerSnapshot, asJSON bool) error {
	if p == nil {
		return nil
	}
	if asJSON {
		b, err := sonic.ConfigStd.MarshalIndent(p, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode player: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}

	sb := bytebufferpool.Get()
	defer bytebufferpool.Put(sb)

	fmt.Fprintf(sb, "%s (%s)\n", p.PlayerName, p.PlayerTag)
	fmt.Fprintf(sb, "  Town Hall %d, XP level %d\n", p.TownHallLevel, p.ExpLevel)
	fmt.Fprintf(sb, "  Trophies  %d (best %d)\n", p.Trophies, p.BestTrophies())
	fmt.Fprintf(sb, "  War stars %d, defense wins %d\n", p.WarStars, p.DefenseWins)
	fmt.Fprintf(sb, "  Donations %d given, %d received\n", p.Donations, p.DonationsReceived)
	if p.ClanCapitalContributions > 0 {
		fmt.Fprintf(sb, "  Capital contributions %d\n", p.ClanCapitalContributions)
	}

	if p.Clan != nil {
		role := ""
		if p.Role != nil {
			role = ", " + *p.Role
		}
		fmt.Fprintf(sb, "  Clan      %s (%s) level %d%s\n", p.Clan.Name, p.Clan.Tag, p.Clan.ClanLevel, role)
	}
	if p.League != nil {
		fmt.Fprintf(sb, "  League    %s\n", p.League.Name)
	}
	if p.Legends != nil {
		if p.Legends.GlobalRank != nil {
			fmt.Fprintf(sb, "  Global rank #%d\n", *p.Legends.GlobalRank)
		}
		if p.Legends.LocalRank != nil {
			fmt.Fprintf(sb, "  Local rank  #%d\n", *p.Legends.LocalRank)
		}
	}

	writeItems(sb, "Heroes", p.Heroes)
	writeEquipment(sb, p.HeroEquipment)
	writeItems(sb, "Pets", p.Pets)
	writeItems(sb, "Elixir troops", p.ElixirTroops)
	writeItems(sb, "Dark elixir troops", p.DarkElixirTroops)
	writeItems(sb, "Siege machines", p.SiegeMachines)
	writeItems(sb, "Elixir spells", p.ElixirSpells)
	writeItems(sb, "Dark elixir spells", p.DarkElixirSpells)

	_, err := sb.WriteTo(w)
	return err
}

func writeItems(sb *bytebufferpool.ByteBuffer, title string, items []domain.Item) {
	if len(items) == 0 {
		return
	}
	maxed := 0
	for _, it := range items {
		if it.IsMaxed() {
			maxed++
		}
	}
	fmt.Fprintf(sb, "  %s (%d/%d maxed)\n", title, maxed, len(items))
	for _, it := range items {
		fmt.Fprintf(sb, "    %-22s %3d/%-3d%s\n", it.Name, it.Level, it.MaxLevel, maxedMark(it.IsMaxed()))
	}
}

func writeEquipment(sb *bytebufferpool.ByteBuffer, eq domain.HeroEquipment) {
	heroes := []struct {
		name  string
		items []domain.EquipmentItem
	}{
		{"Barbarian King", eq.BarbarianKing},
		{"Archer Queen", eq.ArcherQueen},
		{"Minion Prince", eq.MinionPrince},
		{"Grand Warden", eq.GrandWarden},
		{"Royal Champion", eq.RoyalChampion},
	}
	for _, h := range heroes {
		if len(h.items) == 0 {
			continue
		}
		fmt.Fprintf(sb, "  %s equipment\n", h.name)
		for _, it := range h.items {
			flags := maxedMark(it.IsMaxed())
			if it.IsEquipped {
				flags += " [equipped]"
			}
			if it.IsEpic {
				flags += " [epic]"
			}
			fmt.Fprintf(sb, "    %-22s %3d/%-3d%s\n", it.Name, it.Level, it.MaxLevel, flags)
		}
	}
}

func maxedMark(maxed bool) string {
	if maxed {
		return " max"
	}
	return ""
}
