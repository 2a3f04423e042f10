package dsu

import (
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) (*Server, *net.UDPConn, context.CancelFunc, <-chan struct{}) {
	t.Helper()

	srv, err := NewServer("127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := srv.Start(ctx)

	client, err := net.DialUDP("udp", nil, srv.Addr().(*net.UDPAddr))
	require.NoError(t, err)
	t.Cleanup(func() {
		client.Close()
		cancel()
		<-done
	})
	return srv, client, cancel, done
}

func readResponse(t *testing.T, client *net.UDPConn) []byte {
	t.Helper()
	buf := make([]byte, 1024)
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, err := client.Read(buf)
	require.NoError(t, err)
	return buf[:n]
}

func TestServerVersionHandshake(t *testing.T) {
	_, client, _, _ := startTestServer(t)

	_, err := client.Write(clientPacket(7, msgTypeVersion, nil))
	require.NoError(t, err)

	resp := readResponse(t, client)
	require.GreaterOrEqual(t, len(resp), headerSize+4+2)
	assert.Equal(t, "DSUS", string(resp[0:4]))
	assert.Equal(t, msgTypeVersion, binary.LittleEndian.Uint32(resp[16:20]))
	assert.Equal(t, ProtocolVersion, binary.LittleEndian.Uint16(resp[20:22]))
}

func TestServerInfoReportsRegisteredController(t *testing.T) {
	srv, client, _, _ := startTestServer(t)

	srv.SetControllerInfo(ControllerInfo{
		Slot:       0,
		SlotState:  SlotStateConnected,
		Model:      DeviceModelFullGyro,
		Connection: ConnectionTypeUSB,
	})

	// Ask for slots 0 and 1: one response per slot.
	payload := make([]byte, 6)
	binary.LittleEndian.PutUint32(payload[0:4], 2)
	payload[4] = 0
	payload[5] = 1
	_, err := client.Write(clientPacket(7, msgTypeInfo, payload))
	require.NoError(t, err)

	first := readResponse(t, client)
	assert.Equal(t, msgTypeInfo, binary.LittleEndian.Uint32(first[16:20]))
	assert.Equal(t, uint8(0), first[20], "slot")
	assert.Equal(t, uint8(SlotStateConnected), first[21])
	assert.Equal(t, uint8(DeviceModelFullGyro), first[22])

	second := readResponse(t, client)
	assert.Equal(t, uint8(1), second[20], "slot")
	assert.Equal(t, uint8(SlotStateDisconnected), second[21])
}

func TestServerPushesFramesToSubscribers(t *testing.T) {
	srv, client, _, _ := startTestServer(t)
	srv.SetControllerInfo(ControllerInfo{Slot: 0, SlotState: SlotStateConnected, Model: DeviceModelFullGyro, Connection: ConnectionTypeUSB})

	// Slot-based subscription to slot 0.
	sub := make([]byte, 8)
	sub[0] = 0x01
	sub[1] = 0
	_, err := client.Write(clientPacket(7, msgTypeData, sub))
	require.NoError(t, err)

	// Give the serve loop a moment to register the subscription, then
	// publish until a frame arrives.
	var resp []byte
	require.Eventually(t, func() bool {
		srv.SendControllerData(0, ControllerData{Connected: true, MotionTimestamp: 555})
		buf := make([]byte, 1024)
		client.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
		n, err := client.Read(buf)
		if err != nil {
			return false
		}
		resp = buf[:n]
		return true
	}, 2*time.Second, 10*time.Millisecond)

	require.Len(t, resp, 100)
	assert.Equal(t, msgTypeData, binary.LittleEndian.Uint32(resp[16:20]))
	assert.Equal(t, uint8(1), resp[31], "connected flag") // 20 header+type, 11 info
	assert.Equal(t, uint64(555), binary.LittleEndian.Uint64(resp[68:76]))
}

func TestServerIgnoresFrameForOtherSlot(t *testing.T) {
	srv, client, _, _ := startTestServer(t)

	sub := make([]byte, 8)
	sub[0] = 0x01
	sub[1] = 0
	_, err := client.Write(clientPacket(7, msgTypeData, sub))
	require.NoError(t, err)
	time.Sleep(100 * time.Millisecond)

	srv.SendControllerData(1, ControllerData{Connected: true})

	buf := make([]byte, 1024)
	client.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, err = client.Read(buf)
	assert.Error(t, err, "no frame expected for an unsubscribed slot")
}

func TestServerStopsOnCancel(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := srv.Start(ctx)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}
