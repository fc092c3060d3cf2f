// Package main demonstrates the two-square vacuum world, the classic
// instantiation of the model-based reflex agent.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/felixgeelhaar/reflex-go/application"
	"github.com/felixgeelhaar/reflex-go/pack/vacuum"
)

func main() {
	// 1. Build the agent: transition model, sensor model, priority-
	// ordered rules, and the standard initial belief (at A, both
	// squares assumed dirty).
	robot, err := vacuum.NewAgent()
	if err != nil {
		log.Fatal(err)
	}

	// 2. Wrap it in a recorded session so every step is journaled.
	session, err := application.NewSession(robot, application.WithWorld("vacuum"))
	if err != nil {
		log.Fatal(err)
	}

	// 3. Drive it over the classic five-percept sequence.
	fmt.Println("=== Vacuum World ===")
	episode, err := session.Run(context.Background(), vacuum.DemoPercepts())
	if err != nil {
		log.Fatal(err)
	}

	for _, step := range episode.Steps {
		fmt.Printf("%d. percept %s -> action %s\n", step.Index+1, step.Percept, step.Action)
	}

	// 4. Inspect the final belief.
	final, err := json.Marshal(robot.State())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Final belief: %s\n", final)
	fmt.Printf("Status: %s\n", episode.Status)
}
