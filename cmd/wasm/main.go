//go:build js && wasm

// Command wasm exposes the policy engine to the browser via WebAssembly.
// After loading, it registers two global JavaScript functions:
//
//	runSimulation(jsonString) -> jsonString
//	judgePolicy(congestion, complaintScore, budgetChangePercent) -> {tier, message}
//
// runSimulation takes and returns the same Request and Response JSON as the CLI.
package main

import (
	"syscall/js"

	"github.com/cxd309/tram-policy/internal/dashboard"
	"github.com/cxd309/tram-policy/internal/judge"
)

func main() {
	js.Global().Set("runSimulation", js.FuncOf(runSimulation))
	js.Global().Set("judgePolicy", js.FuncOf(judgePolicy))
	select {} // keep the WASM module alive until the page is closed
}

func runSimulation(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return map[string]any{"error": "no input provided"}
	}

	result, err := dashboard.RunJSON(args[0].String())
	if err != nil {
		return map[string]any{"error": err.Error()}
	}
	return result
}

func judgePolicy(_ js.Value, args []js.Value) any {
	if len(args) < 3 {
		return map[string]any{"error": "expected congestion, complaint score and budget change"}
	}
	j := judge.Judge(args[0].Float(), args[1].Float(), args[2].Float())
	return map[string]any{"tier": string(j.Tier), "message": j.Message}
}
