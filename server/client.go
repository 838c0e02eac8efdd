package main

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 50
	maxNameLen        = 16
	maxBattleNameLen  = 30
)

// Client represents a WebSocket connection
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	log        zerolog.Logger
	msgCount   int
	msgResetAt time.Time

	// Seat state, owned by the ReadPump goroutine
	battleID   string
	ship       int // -1 = not seated
	spectating bool
}

// NewClient creates a new Client
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
		log:        Logger.With().Str("remote", remoteAddr).Logger(),
		ship:       -1,
	}
}

// ReadPump reads messages from the WebSocket connection
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn().Err(err).Msg("ws error")
			}
			break
		}

		// Rate limiting
		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			c.log.Warn().Msg("rate limit exceeded, disconnecting")
			break
		}

		c.handleMessage(message)
	}
}

// WritePump writes messages to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			// Check for binary marker (0xFF prefix from SendBinary)
			var err error
			if len(message) > 0 && message[0] == 0xFF {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendJSON sends a JSON message to the client
func (c *Client) SendJSON(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error().Err(err).Msg("marshal")
		return
	}
	c.SendRaw(data)
}

// SendRaw sends pre-marshaled bytes as a text message to the client
func (c *Client) SendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
		// Client too slow, drop message
	}
}

// SendBinary sends a msgpack snapshot as a binary WebSocket message.
// The 0xFF marker byte lets WritePump tell it apart from text.
func (c *Client) SendBinary(data []byte) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = 0xFF
	copy(msg[1:], data)
	select {
	case c.send <- msg:
	default:
	}
}

func (c *Client) sendError(msg string) {
	c.SendJSON(Envelope{T: MsgError, Data: ErrorMsg{Msg: msg}})
}

// handleMessage routes incoming messages (single-pass decode via InEnvelope)
func (c *Client) handleMessage(raw []byte) {
	var env InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.log.Debug().Err(err).Msg("unmarshal")
		return
	}

	switch env.T {
	case MsgList:
		c.handleList()
	case MsgCreate:
		c.handleCreate(env.D)
	case MsgJoin:
		c.handleJoin(env.D)
	case MsgResume:
		c.handleResume(env.D)
	case MsgStart:
		c.handleStart()
	case MsgCommand:
		c.handleCommand(env.D)
	case MsgSpectate:
		c.handleSpectate(env.D)
	case MsgLeave:
		c.handleLeave()
	default:
		c.sendError("unknown message type")
	}
}

func (c *Client) handleList() {
	c.SendJSON(Envelope{T: MsgBattles, Data: c.hub.battles.List()})
}

func (c *Client) handleCreate(data json.RawMessage) {
	var msg CreateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	name := msg.Name
	if name == "" {
		name = "Naval Battle"
	}
	if len(name) > maxBattleNameLen {
		name = name[:maxBattleNameLen]
	}

	b, err := c.hub.battles.Create(name, msg.Pass)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.log.Info().Str("battle", b.ID).Str("name", name).Msg("battle created")
	c.SendJSON(Envelope{T: MsgCreated, Data: map[string]string{"bid": b.ID}})
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg JoinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	name := msg.Name
	if name == "" {
		name = "Captain"
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}

	b, err := c.hub.battles.Get(msg.BattleID)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	if b.Private() {
		if err := c.hub.auth.CheckPassphrase(b.passHash, msg.Pass, c.remoteAddr); err != nil {
			c.sendError(err.Error())
			return
		}
	}

	s, err := b.AddShip(name, msg.Team)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	token, err := c.hub.auth.IssueSeatToken(b.ID, s.Index)
	if err != nil {
		c.log.Error().Err(err).Msg("issue seat token")
		c.sendError("could not issue seat token")
		return
	}
	c.seat(b, s.Index)
	c.SendJSON(Envelope{T: MsgJoined, Data: JoinedMsg{BattleID: b.ID, Ship: s.Index, Token: token}})
}

func (c *Client) handleResume(data json.RawMessage) {
	var msg ResumeMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	bid, ship, err := c.hub.auth.ValidateSeatToken(msg.Token)
	if err != nil {
		c.sendError(ErrInvalidToken.Error())
		return
	}
	b, err := c.hub.battles.Get(bid)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.leave()
	if err := b.SetController(ship, c); err != nil {
		c.sendError(err.Error())
		return
	}
	c.battleID = bid
	c.ship = ship
	c.SendJSON(Envelope{T: MsgJoined, Data: JoinedMsg{BattleID: bid, Ship: ship, Token: msg.Token}})
}

// seat makes c the controller of ship in b, leaving any previous seat
func (c *Client) seat(b *Battle, ship int) {
	c.leave()
	if err := b.SetController(ship, c); err != nil {
		c.log.Error().Err(err).Int("ship", ship).Msg("set controller")
		return
	}
	c.battleID = b.ID
	c.ship = ship
}

func (c *Client) handleStart() {
	b := c.battle()
	if b == nil || c.ship < 0 {
		c.sendError("not seated")
		return
	}
	if err := b.Start(); err != nil {
		c.sendError(err.Error())
	}
}

func (c *Client) handleCommand(data json.RawMessage) {
	b := c.battle()
	if b == nil || c.ship < 0 {
		c.sendError("not seated")
		return
	}
	var msg CommandMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	id, err := b.Command(c.ship, msg)
	if err != nil {
		if errors.Is(err, ErrUnknownCommand) || errors.Is(err, ErrShipUnavailable) || errors.Is(err, ErrNotEnoughEnergy) {
			c.sendError(err.Error())
		}
		return
	}
	if msg.Op == OpFire || msg.Op == OpLaunch {
		c.SendJSON(Envelope{T: MsgAck, Data: AckMsg{Op: msg.Op, ID: id}})
	}
}

func (c *Client) handleSpectate(data json.RawMessage) {
	var msg SpectateMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	b, err := c.hub.battles.Get(msg.BattleID)
	if err != nil {
		c.sendError(err.Error())
		return
	}
	c.leave()
	b.AddSpectator(c)
	c.battleID = b.ID
	c.spectating = true
	c.SendJSON(Envelope{T: MsgWatching, Data: b.Info()})
}

func (c *Client) handleLeave() {
	c.leave()
}

// battle returns the battle c is attached to, if it still exists
func (c *Client) battle() *Battle {
	if c.battleID == "" {
		return nil
	}
	b, err := c.hub.battles.Get(c.battleID)
	if err != nil {
		return nil
	}
	return b
}

// leave detaches c from its battle. The ship stays in the world so its
// seat can be resumed with the token.
func (c *Client) leave() {
	if b := c.battle(); b != nil {
		if c.spectating {
			b.RemoveSpectator(c)
		} else if c.ship >= 0 {
			b.RemoveController(c.ship, c)
		}
	}
	c.battleID = ""
	c.ship = -1
	c.spectating = false
}
