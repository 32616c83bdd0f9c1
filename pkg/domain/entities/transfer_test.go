package entities

import "testing"

func TestTransferItem_Keys(t *testing.T) {
	from := int64(11)
	lot := "LOT-9"
	line := InterDivisionTransferItem{
		ItemID:          4,
		FromWarehouseID: 1,
		FromLocationID:  &from,
		ToWarehouseID:   2,
		LotNumber:       &lot,
	}

	src := line.SourceKey()
	if src.WarehouseID != 1 || src.LocationID == nil || *src.LocationID != 11 || *src.LotNumber != "LOT-9" {
		t.Errorf("Unexpected source key %s", src)
	}
	dst := line.DestinationKey()
	if dst.WarehouseID != 2 || dst.LocationID != nil || *dst.LotNumber != "LOT-9" {
		t.Errorf("Unexpected destination key %s", dst)
	}
}

func TestTransfer_Cancellable(t *testing.T) {
	for status, expected := range map[TransferStatus]bool{
		TransferDraft:      true,
		TransferInProgress: true,
		TransferCompleted:  false,
		TransferCancelled:  false,
	} {
		tr := &InterDivisionTransfer{Status: status}
		if tr.Cancellable() != expected {
			t.Errorf("%s: expected cancellable=%v", status, expected)
		}
	}
}
