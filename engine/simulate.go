package engine

// simulate runs one Playing tick: commands in arrival order, then apples,
// deaths, eating, timers, the win check and finally movement.
func (g *Game) simulate(st *Playing, cmds []Command) (GameStateEvent, string, bool) {
	used := make([]RecentPowerUp, 0)
	for _, cmd := range cmds {
		switch cmd.Message.Kind {
		case CmdUsePowerUp:
			if g.applyPowerUp(st, cmd.PlayerID, cmd.Message.PowerUp) {
				used = append(used, RecentPowerUp{UserID: cmd.PlayerID, PowerUp: cmd.Message.PowerUp})
			}
		case CmdSetDirection:
			if s, ok := st.alive(cmd.PlayerID); ok {
				s.Turn(cmd.Message.Direction)
			}
		}
	}

	g.replenishApples(st)
	g.detectDeaths(st)
	ate := g.eatApples(st)
	g.decayTimers(st)
	winner, over := g.checkWinner(st)
	if st.Ticks%g.cfg.MoveEveryTicks == 0 {
		g.moveSnakes(st)
	}
	st.Ticks++

	return g.snapshot(st, ate, used), winner, over
}

// replenishApples tries AppleAttempts random cells per missing apple. An
// apple whose attempts all collide is left for the next tick.
func (g *Game) replenishApples(st *Playing) {
	missing := g.cfg.AppleTarget - len(st.Apples)
	for i := 0; i < missing; i++ {
		for attempt := 0; attempt < g.cfg.AppleAttempts; attempt++ {
			p := Point{X: g.rng.Intn(g.board.Width), Y: g.rng.Intn(g.board.Height)}
			if g.occupied(st, p) {
				continue
			}
			st.Apples = append(st.Apples, p)
			break
		}
	}
}

func (g *Game) occupied(st *Playing, p Point) bool {
	for _, a := range st.Apples {
		if a == p {
			return true
		}
	}
	for _, id := range g.players {
		if s, ok := st.alive(id); ok && g.board.Overlaps(p, s) {
			return true
		}
	}
	return false
}

// detectDeaths checks each vulnerable head against every other living
// snake. Hits are collected first so the order of players does not matter.
func (g *Game) detectDeaths(st *Playing) {
	var hit []*AliveSnake
	for _, id := range g.players {
		s, ok := st.alive(id)
		if !ok || s.Invulnerable.Active() || s.Frozen.Active() {
			continue
		}
		for _, otherID := range g.players {
			if otherID == id {
				continue
			}
			if other, ok := st.alive(otherID); ok && g.board.Overlaps(s.Head, other) {
				hit = append(hit, s)
				break
			}
		}
	}

	for _, s := range hit {
		if s.HasExtraLife {
			s.HasExtraLife = false
			s.Invulnerable = CountdownOf(g.cfg.StatusTicks())
			continue
		}
		st.Snakes[s.UserID] = s.kill(g.cfg.ReviveTicks)
	}
}

// eatApples lets the first living snake (registration order) whose head is
// on an apple claim it.
func (g *Game) eatApples(st *Playing) []string {
	ate := make([]string, 0)
	kept := st.Apples[:0]
	for _, apple := range st.Apples {
		eaten := false
		for _, id := range g.players {
			if s, ok := st.alive(id); ok && s.Head == apple {
				s.Grow(g.cfg.AppleGrowth)
				ate = append(ate, id)
				eaten = true
				break
			}
		}
		if !eaten {
			kept = append(kept, apple)
		}
	}
	st.Apples = kept
	return ate
}

func (g *Game) decayTimers(st *Playing) {
	for _, id := range g.players {
		switch s := st.Snakes[id].(type) {
		case *AliveSnake:
			s.Invulnerable.Tick()
			s.Frozen.Tick()
		case *DeadSnake:
			s.Revive.Tick()
		}
	}
}

// checkWinner counts living snakes plus dead ones still waiting out their
// revive countdown. One left wins; none left falls back to the first
// registered player.
func (g *Game) checkWinner(st *Playing) (string, bool) {
	var inPlay []string
	for _, id := range g.players {
		switch s := st.Snakes[id].(type) {
		case *AliveSnake:
			inPlay = append(inPlay, id)
		case *DeadSnake:
			if s.Revive.Active() {
				inPlay = append(inPlay, id)
			}
		}
	}
	switch len(inPlay) {
	case 1:
		return inPlay[0], true
	case 0:
		return g.players[0], true
	}
	return "", false
}

func (g *Game) moveSnakes(st *Playing) {
	for _, id := range g.players {
		if s, ok := st.alive(id); ok && !s.Frozen.Active() {
			s.Advance(g.board)
		}
	}
}

func (g *Game) snapshot(st *Playing, ate []string, used []RecentPowerUp) GameStateEvent {
	snakes := make([]SnakeView, 0, len(g.players))
	for _, id := range g.players {
		if s, ok := st.Snakes[id]; ok {
			snakes = append(snakes, viewOf(s))
		}
	}
	return GameStateEvent{
		Apples:         append([]Point{}, st.Apples...),
		Snakes:         snakes,
		JustAteApple:   ate,
		RecentPowerUps: used,
	}
}
