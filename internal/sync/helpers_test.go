package sync

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }
