package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"blind-relay/domain"
	"blind-relay/envelope"
	"blind-relay/infrastructure/ws"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

// A terminal party for the relay. The keypair lives only in this process:
// the relay sees the public half through registration and nothing else.
//
//	/peers                list registered parties
//	@bob some message     seal for bob's announced key and send
//	/quit                 leave
func main() {
	_ = godotenv.Load()
	addr := flag.String("addr", "localhost:9040", "relay host:port")
	name := flag.String("name", "", "identity to register (required)")
	flag.Parse()

	if *name == "" {
		log.Fatal("missing -name")
	}

	keypair, err := envelope.GenerateKeypair()
	if err != nil {
		log.Fatal("Keypair generation failed: ", err)
	}
	publicKey, err := envelope.MarshalPublicKey(keypair.Public)
	if err != nil {
		log.Fatal("Public key encoding failed: ", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+*addr+"/ws", nil)
	if err != nil {
		log.Fatal("Connection to relay failed: ", err)
	}
	defer conn.Close()

	client := &client{
		conn:    conn,
		keypair: keypair,
		peers:   make(map[string]string),
	}

	// The relay speaks first: wait for the temporary identity, then claim ours.
	var assigned ws.ServerMessage
	if err := conn.ReadJSON(&assigned); err != nil {
		log.Fatal("Relay did not assign an identity: ", err)
	}
	fmt.Printf("Connected as %s, registering as %q...\n", assigned.Identity, *name)

	if err := conn.WriteJSON(ws.ClientMessage{
		Type: ws.TypeRegister, Identity: *name, PublicKey: publicKey,
	}); err != nil {
		log.Fatal("Registration failed: ", err)
	}

	go client.receive()
	client.prompt()
}

type client struct {
	conn    *websocket.Conn
	keypair *envelope.Keypair

	mu    sync.Mutex
	peers map[string]string // identity -> announced public key
}

func (c *client) receive() {
	for {
		var frame ws.ServerMessage
		if err := c.conn.ReadJSON(&frame); err != nil {
			color.Red.Println("Disconnected from relay:", err)
			os.Exit(1)
		}

		switch frame.Type {
		case "registration-confirmed":
			color.Green.Printf("Registered as %q\n", frame.Identity)
		case "presence-update":
			c.mu.Lock()
			c.peers = make(map[string]string, len(frame.Parties))
			for _, p := range frame.Parties {
				c.peers[p.Identity] = p.PublicKey
			}
			c.mu.Unlock()
		case "deliver":
			c.printDelivery(frame)
		}
	}
}

func (c *client) printDelivery(frame ws.ServerMessage) {
	plaintext, err := envelope.Open(c.keypair.Private, domain.SealedEnvelope{
		WrappedKey: frame.WrappedKey,
		Ciphertext: frame.Ciphertext,
		Nonce:      frame.Nonce,
	})
	if err != nil {
		// A single bad envelope stays local to that message.
		color.Yellow.Printf("%s: [unreadable message]\n", frame.From)
		return
	}
	fmt.Printf("%s: %s\n", color.Cyan.Render(frame.From), plaintext)
}

func (c *client) prompt() {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
		case line == "/quit":
			return
		case line == "/peers":
			c.printPeers()
		case strings.HasPrefix(line, "@"):
			c.send(line)
		default:
			fmt.Println("Usage: /peers, /quit, or @identity message")
		}
	}
}

func (c *client) printPeers() {
	c.mu.Lock()
	defer c.mu.Unlock()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Identity", "Public Key"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for identity, key := range c.peers {
		fingerprint := key
		if len(fingerprint) > 24 {
			fingerprint = fingerprint[:24] + "..."
		}
		table.Append([]string{identity, fingerprint})
	}
	table.Render()
}

func (c *client) send(line string) {
	to, text, found := strings.Cut(line[1:], " ")
	if !found || text == "" {
		fmt.Println("Usage: @identity message")
		return
	}

	c.mu.Lock()
	announced, ok := c.peers[to]
	c.mu.Unlock()
	if !ok {
		color.Yellow.Printf("Unknown peer %q, try /peers\n", to)
		return
	}

	recipientKey, err := envelope.ParsePublicKey(announced)
	if err != nil {
		color.Red.Printf("Peer %q announced an unusable key: %v\n", to, err)
		return
	}

	sealed, err := envelope.Seal(recipientKey, []byte(text))
	if err != nil {
		color.Red.Println("Sealing failed:", err)
		return
	}

	if err := c.conn.WriteJSON(ws.ClientMessage{
		Type:       ws.TypeSend,
		To:         to,
		WrappedKey: sealed.WrappedKey,
		Ciphertext: sealed.Ciphertext,
		Nonce:      sealed.Nonce,
	}); err != nil {
		color.Red.Println("Send failed:", err)
	}
}
