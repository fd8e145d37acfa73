package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/embeddedtls/recordproto/alert"
	"github.com/embeddedtls/recordproto/bulkcrypto"
	"github.com/embeddedtls/recordproto/compression"
	"github.com/embeddedtls/recordproto/protocol"
	"github.com/embeddedtls/recordproto/record"
)

func loopbackCommand() *cobra.Command {
	var (
		datagram bool
		cipher   string
		message  string
	)

	cmd := &cobra.Command{
		Use:   "loopback",
		Short: "Send one message from a client to a server RecordProtocol over an in-memory pipe",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoopback(datagram, cipher, message)
		},
	}

	cmd.Flags().BoolVar(&datagram, "datagram", false, "use DTLS framing instead of TLS")
	cmd.Flags().StringVar(&cipher, "cipher", "null", "bulk cipher to install: null, gcm128, gcm256")
	cmd.Flags().StringVar(&message, "message", "hello from recordctl", "application_data payload to send")

	return cmd
}

func runLoopback(datagram bool, cipher, message string) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("recordctl: building logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	clientCfg := protocol.DefaultTLSConfig(record.RoleClient)
	serverCfg := protocol.DefaultTLSConfig(record.RoleServer)
	if datagram {
		clientCfg = protocol.DefaultDTLSConfig(record.RoleClient)
		serverCfg = protocol.DefaultDTLSConfig(record.RoleServer)
	}

	client := protocol.New(clientCfg, logger.Named("client"))
	server := protocol.New(serverCfg, logger.Named("server"))

	delivered := make(chan []byte, 1)

	if err := server.Open(protocol.Callbacks{
		OnApplicationData: func(b []byte) { delivered <- b },
		OnAlert:            func(a alert.Alert) { logger.Warn("server received alert", zap.String("alert", a.Error())) },
		OnClose:            func(reason error) { logger.Info("server connection closed", zap.Error(reason)) },
	}); err != nil {
		return fmt.Errorf("recordctl: opening server: %w", err)
	}

	if err := client.Open(protocol.Callbacks{
		OnSendToTransport: func(b []byte) {
			if err := server.HandleReceivedDataFromTransport(b); err != nil {
				logger.Error("server failed to process record", zap.Error(err))
			}
		},
		OnClose: func(reason error) { logger.Info("client connection closed", zap.Error(reason)) },
	}); err != nil {
		return fmt.Errorf("recordctl: opening client: %w", err)
	}

	if err := server.Connect(); err != nil {
		return fmt.Errorf("recordctl: connecting server: %w", err)
	}
	if err := client.Connect(); err != nil {
		return fmt.Errorf("recordctl: connecting client: %w", err)
	}

	if cipher != "null" {
		sp, suite, err := cipherParameters(cipher)
		if err != nil {
			return err
		}
		if err := client.SetWriteSecurityParameters(sp, suite, compression.NewNull()); err != nil {
			return fmt.Errorf("recordctl: installing client write cipher: %w", err)
		}
		if err := server.SetReadSecurityParameters(sp, suite, compression.NewNull()); err != nil {
			return fmt.Errorf("recordctl: installing server read cipher: %w", err)
		}
	}

	if err := client.SendMessage(record.ContentTypeApplicationData, []byte(message)); err != nil {
		return fmt.Errorf("recordctl: sending message: %w", err)
	}

	select {
	case b := <-delivered:
		fmt.Printf("server received: %q\n", string(b))
	default:
		return fmt.Errorf("recordctl: server never delivered application data")
	}

	return nil
}

func cipherParameters(name string) (*record.SecurityParameters, bulkcrypto.Suite, error) {
	key16 := bytesOf(16, 0x00)
	key32 := bytesOf(32, 0x11)
	iv := bytesOf(4, 0x01)

	switch name {
	case "gcm128":
		return &record.SecurityParameters{
			CipherAlgorithm: record.CipherAESGCM,
			CipherSuiteID:   record.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
			ClientWriteKey:  key16,
			ServerWriteKey:  key16,
			ClientWriteIV:   iv,
			ServerWriteIV:   iv,
			RecordSizeLimit: record.DefaultRecordSizeLimit,
		}, bulkcrypto.NewGCM128(), nil
	case "gcm256":
		return &record.SecurityParameters{
			CipherAlgorithm: record.CipherAESGCM,
			CipherSuiteID:   record.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
			ClientWriteKey:  key32,
			ServerWriteKey:  key32,
			ClientWriteIV:   iv,
			ServerWriteIV:   iv,
			RecordSizeLimit: record.DefaultRecordSizeLimit,
		}, bulkcrypto.NewGCM256(), nil
	default:
		return nil, nil, fmt.Errorf("recordctl: unknown cipher %q", name)
	}
}

func bytesOf(n int, fill byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = fill + byte(i)
	}
	return out
}
