package record

import "testing"

func assertTrue(t *testing.T, cond bool, msg string) {
	t.Helper()
	if !cond {
		t.Fatal(msg)
	}
}

func TestStageTransitionChain(t *testing.T) {
	pt := NewPlainText(ContentTypeApplicationData, VersionTLS12, false, DirectionWrite, EpochClear, 0, 0, 3, []byte("hello"))
	ct := pt.IntoCompressed([]byte("hello"))
	assertTrue(t, ct.ContentType() == ContentTypeApplicationData, "content type should carry across stages")
	assertTrue(t, ct.WriteSeq() == 3, "write seq snapshot should carry across stages")

	cipher := ct.IntoCipherText([]byte("hello-encrypted"))
	assertTrue(t, string(cipher.Payload) == "hello-encrypted", "payload should be the transformed one")
	assertTrue(t, cipher.Version() == VersionTLS12, "version should carry across stages")
}

func TestStageReuseAfterMovePanics(t *testing.T) {
	pt := NewPlainText(ContentTypeHandshake, VersionDTLS12, true, DirectionWrite, Epoch(1), 7, 0, 0, []byte("x"))
	_ = pt.IntoCompressed([]byte("x"))

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic on reuse of a consumed stage object")
		}
	}()
	pt.IntoCompressed([]byte("x"))
}

func TestImplicitSeqDTLSCombinesEpochAndSeq(t *testing.T) {
	ct := NewCipherText(ContentTypeApplicationData, VersionDTLS12, true, DirectionWrite, Epoch(1), 0, 0, 0, nil)
	got := ct.ImplicitSeq()
	want := uint64(1) << 48
	assertTrue(t, got == want, "DTLS implicit seq should fold epoch into the high bits")
}

func TestImplicitSeqTLSUsesDirectionSnapshot(t *testing.T) {
	write := NewCipherText(ContentTypeApplicationData, VersionTLS12, false, DirectionWrite, EpochClear, 0, 99, 5, nil)
	assertTrue(t, write.ImplicitSeq() == 5, "write direction should use the write snapshot")

	read := NewCipherText(ContentTypeApplicationData, VersionTLS12, false, DirectionRead, EpochClear, 0, 99, 5, nil)
	assertTrue(t, read.ImplicitSeq() == 99, "read direction should use the read snapshot")
}
