package client

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tomz197/roadwar/internal/draw"
	"github.com/tomz197/roadwar/internal/loop/config"
	"github.com/tomz197/roadwar/internal/object"
)

const controlsHint = "W/S drive  A/D steer  SPACE fire  Q quit"

var wreckedArt = []string{
	` __      _____ ___ ___ _  _____ ___  `,
	` \ \    / / _ \ __/ __| |/ / __|   \ `,
	`  \ \/\/ /|   / _| (__| ' <| _|| |) |`,
	`   \_/\_/ |_|_\___\___|_|\_\___|___/ `,
}

// project maps a world position onto the canvas. The camera looks straight
// down with +Z up the screen; +X runs to the left so that steering left
// turns the vehicle left on screen.
func project(cam, p mgl64.Vec3) draw.Point {
	return draw.Point{
		X: cam[0] - p[0] + config.ViewWidth/2,
		Y: cam[2] - p[2] + config.ViewHeight/2,
	}
}

// visible reports whether a world-space rectangle around the camera can
// show up on the canvas.
func visible(cam mgl64.Vec3, minX, minZ, maxX, maxZ float64) bool {
	const halfW, halfH = config.ViewWidth/2 + 1, config.ViewHeight/2 + 1
	return maxX >= cam[0]-halfW && minX <= cam[0]+halfW &&
		maxZ >= cam[2]-halfH && minZ <= cam[2]+halfH
}

// drawFrame draws the current frame.
func (c *Client) drawFrame(now time.Time) error {
	// Full clear on screen or inactivity transitions so overlays from the
	// previous screen don't linger.
	if c.state.screen != c.state.prevScreen || c.state.isInactive != c.state.wasInactive {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevScreen = c.state.screen
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()
	cam := c.session.Vehicle().Position

	c.drawWorld(cam)
	c.drawActors(cam, now)

	c.canvas.Render(c.chunkWriter)
	c.canvas.RenderBorder(c.chunkWriter)

	c.drawPeerNames(cam)
	c.drawUI(now)

	return c.chunkWriter.Flush()
}

// drawWorld draws terrain contours, roads and buildings of the loaded chunks.
func (c *Client) drawWorld(cam mgl64.Vec3) {
	for _, k := range c.session.Store().Keys() {
		cs, ok := c.scenery.get(k)
		if !ok || !visible(cam, cs.lo[0], cs.lo[2], cs.hi[0], cs.hi[2]) {
			continue
		}
		for _, ring := range cs.contours {
			for i := 1; i < len(ring); i++ {
				c.canvas.DrawLine(project(cam, ring[i-1]), project(cam, ring[i]), draw.ColorTerrain)
			}
		}
		for _, r := range cs.rects {
			c.canvas.FillRect(project(cam, r.lo), project(cam, r.hi), r.color)
		}
	}
}

// drawActors draws bots, peers, projectiles, particles and the local vehicle.
func (c *Client) drawActors(cam mgl64.Vec3, now time.Time) {
	for _, b := range c.session.Bots() {
		ext := mgl64.Vec3{config.BotHalfExtent, 0, config.BotHalfExtent}
		c.canvas.FillRect(project(cam, b.Position.Sub(ext)), project(cam, b.Position.Add(ext)), draw.ColorBot)
	}
	for _, rep := range c.session.Replicas().All() {
		c.canvas.DrawPolygon(c.vehicleShape(cam, rep.Position, rep.Rotation[1]), false, draw.ColorPeer)
	}
	for _, p := range c.session.Projectiles() {
		pt := project(cam, p.Position)
		c.canvas.Set(pt.X, pt.Y, draw.ColorProjectile)
	}
	for _, p := range c.effects.Particles() {
		color := draw.ColorEffect
		if p.Faded() {
			color = draw.ColorFaded
		}
		pt := project(cam, p.Position)
		c.canvas.Set(pt.X, pt.Y, color)
	}

	v := c.session.Vehicle()
	blink := c.session.RamCooldown(now).Seconds()
	if object.ShouldRenderBlink(blink, config.DamageBlinkFrequency) {
		c.canvas.DrawPolygon(c.vehicleShape(cam, v.Position, v.Yaw), true, draw.ColorSelf)
	}
}

// vehicleShape returns a triangle pointing along yaw.
func (c *Client) vehicleShape(cam, pos mgl64.Vec3, yaw float64) []draw.Point {
	fwd := mgl64.Vec3{math.Sin(yaw), 0, math.Cos(yaw)}
	side := mgl64.Vec3{math.Cos(yaw), 0, -math.Sin(yaw)}
	nose := pos.Add(fwd.Mul(config.VehicleHalfLength * 1.5))
	tail := pos.Sub(fwd.Mul(config.VehicleHalfLength))

	pts := c.canvas.BorrowPoints(3)
	pts[0] = project(cam, nose)
	pts[1] = project(cam, tail.Add(side.Mul(config.VehicleHalfWidth*1.5)))
	pts[2] = project(cam, tail.Sub(side.Mul(config.VehicleHalfWidth*1.5)))
	return pts
}

// drawPeerNames labels remote vehicles. The cells are marked dirty so the
// canvas repaints them once the label moves on.
func (c *Client) drawPeerNames(cam mgl64.Vec3) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	for _, rep := range c.session.Replicas().All() {
		pt := project(cam, rep.Position)
		col, row := c.canvas.LogicalToTerminal(pt.X, pt.Y-5)
		width := utf8.RuneCountInString(rep.Name)
		col -= width / 2
		if row < 1 || row > termHeight || col < 1 || col+width > termWidth {
			continue
		}
		c.chunkWriter.WriteAt(col, row, rep.Name)
		c.canvas.MarkTextDirty(col, row, width)
	}
}

// drawUI draws the overlay for the current screen.
func (c *Client) drawUI(now time.Time) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()
	centerX, centerY := termWidth/2, termHeight/2

	switch {
	case c.state.screen == screenDisconnected:
		c.drawDisconnectedScreen(centerX, centerY, now)
	case c.state.isInactive:
		c.drawInactivityScreen(centerX, centerY, now)
	case c.state.screen == screenDefeated:
		c.drawHUD(termWidth, termHeight)
		c.drawDefeatedScreen(centerX, centerY, now)
	default:
		c.drawHUD(termWidth, termHeight)
	}
}

// drawHUD draws score, health, speed and the ranking. Fields are fixed
// width so shrinking values don't leave stale characters.
func (c *Client) drawHUD(termWidth, termHeight int) {
	cw := c.chunkWriter
	s := c.session

	healthStyle := draw.ColorBold
	if s.Health() <= config.MaxHealth/4 {
		healthStyle = draw.ColorRed
	}
	cw.WriteAt(2, 1, fmt.Sprintf("Score: %-7d", s.Score()))
	cw.WriteStyled(18, 1, healthStyle, fmt.Sprintf("Health: %-4d", s.Health()))
	cw.WriteAt(32, 1, fmt.Sprintf("Speed: %-6.1f", math.Abs(s.Speed())*config.ClientTickRate))

	c.drawRanking(termWidth)

	pos := s.Vehicle().Position
	cw.WriteAt(2, termHeight, fmt.Sprintf("X:%-6.0f Z:%-6.0f", pos[0], pos[2]))

	status := "offline "
	if s.LocalID() != "" {
		status = fmt.Sprintf("online %d", s.Replicas().Len()+1)
	}
	status = fmt.Sprintf("%-10s", status)
	cw.WriteAt(termWidth-len(status), termHeight, status)

	if termWidth > len(controlsHint)+40 {
		cw.WriteCentered(termWidth/2, termHeight, controlsHint)
	}
}

// drawRanking lists the top participants in the top-right corner.
func (c *Client) drawRanking(termWidth int) {
	const width = 24
	col := termWidth - width
	if col < 46 {
		return
	}
	cw := c.chunkWriter
	ranking := c.session.Ranking()
	for i := range config.RankingRows {
		line := fmt.Sprintf("%-*s", width, "")
		if i < len(ranking) {
			st := ranking[i]
			line = fmt.Sprintf("%d %-*s %6d ", i+1, width-10, truncate(st.Name, width-10), st.Score)
			if st.Local {
				cw.WriteStyled(col, i+1, draw.ColorBrightCyan, line)
				continue
			}
		}
		cw.WriteAt(col, i+1, line)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// drawDefeatedScreen draws the wrecked banner and restart prompt.
func (c *Client) drawDefeatedScreen(centerX, centerY int, now time.Time) {
	cw := c.chunkWriter
	top := centerY - 5
	for i, line := range wreckedArt {
		cw.WriteStyled(centerX-utf8.RuneCountInString(line)/2, top+i, draw.ColorRed, line)
	}
	cw.WriteCentered(centerX, top+len(wreckedArt)+1, fmt.Sprintf("Score: %d", c.session.Score()))
	if now.UnixMilli()/600%2 == 0 {
		cw.WriteCentered(centerX, top+len(wreckedArt)+3, ">>  Press ENTER to restart  <<")
	} else {
		cw.WriteCentered(centerX, top+len(wreckedArt)+3, "                              ")
	}
}

// drawInactivityScreen draws the inactivity warning.
func (c *Client) drawInactivityScreen(centerX, centerY int, now time.Time) {
	cw := c.chunkWriter
	cw.WriteCentered(centerX, centerY-2, "INACTIVITY WARNING")
	remaining := int(config.InactivityDisconnectUser - now.Sub(c.state.lastInput).Seconds())
	cw.WriteCentered(centerX, centerY, fmt.Sprintf("You will be disconnected in %d seconds.", max(remaining, 0)))
	cw.WriteCentered(centerX, centerY+2, "Press any key to continue")
}

// drawDisconnectedScreen tells the player the relay went away.
func (c *Client) drawDisconnectedScreen(centerX, centerY int, now time.Time) {
	cw := c.chunkWriter
	cw.WriteStyled(centerX-10, centerY-2, draw.ColorYellow, "RELAY CONNECTION LOST")
	left := config.DisconnectDisplay - now.Sub(c.state.disconnectedAt)
	cw.WriteCentered(centerX, centerY, fmt.Sprintf("Leaving in %d seconds...", int(left.Seconds())+1))
	cw.WriteCentered(centerX, centerY+2, "Press Q to quit now")
}
