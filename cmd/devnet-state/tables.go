package main

import (
	"fmt"
	"io"

	"github.com/NethermindEth/juno-devnet/core"
	"github.com/olekukonko/tablewriter"
)

func printStateDiff(w io.Writer, diff *core.StateDiff) {
	storage := tablewriter.NewWriter(w)
	storage.SetHeader([]string{"Contract", "Key", "Value"})
	var slots int
	for _, sd := range diff.StorageDiffs {
		for _, entry := range sd.StorageEntries {
			storage.Append([]string{sd.Address.String(), entry.Key.String(), entry.Value.String()})
			slots++
		}
	}
	storage.SetFooter([]string{"Total", "", fmt.Sprintf("%d", slots)})
	storage.Render()

	contracts := tablewriter.NewWriter(w)
	contracts.SetHeader([]string{"Contract", "Nonce", "Class hash"})
	rows := make(map[string][]string)
	var order []string
	row := func(addr string) []string {
		if r, ok := rows[addr]; ok {
			return r
		}
		r := []string{addr, "", ""}
		rows[addr] = r
		order = append(order, addr)
		return r
	}
	for _, n := range diff.Nonces {
		row(n.Address.String())[1] = n.Nonce.String()
	}
	for _, c := range diff.DeployedContracts {
		row(c.Address.String())[2] = c.ClassHash.String()
	}
	items := make([][]string, 0, len(order))
	for _, addr := range order {
		items = append(items, rows[addr])
	}
	contracts.AppendBulk(items)
	contracts.Render()

	casmHashes := make(map[string]string, len(diff.CompiledClassHashes))
	for _, c := range diff.CompiledClassHashes {
		casmHashes[c.ClassHash.String()] = c.CompiledClassHash.String()
	}
	classes := tablewriter.NewWriter(w)
	classes.SetHeader([]string{"Class hash", "Version", "Compiled class hash"})
	for _, c := range diff.DeclaredClasses {
		classes.Append([]string{c.ClassHash.String(), fmt.Sprintf("%d", c.Class.Version()), casmHashes[c.ClassHash.String()]})
	}
	classes.Render()
}
