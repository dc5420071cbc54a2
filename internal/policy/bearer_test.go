package policy

import "testing"

func TestSelectBearerNetwork(t *testing.T) {
	tests := []struct {
		name     string
		spec     BearerSpec
		expected BearerSpec
		ok       bool
	}{
		{
			name:     "nothing required passes through",
			spec:     BearerSpec{},
			expected: BearerSpec{},
			ok:       true,
		},
		{
			name:     "only bearer required passes through",
			spec:     BearerSpec{BearerRequired: true, Bearer: "CSD"},
			expected: BearerSpec{BearerRequired: true, Bearer: "CSD"},
			ok:       true,
		},
		{
			name: "recognized non-SMS pair is cleared",
			spec: BearerSpec{
				BearerRequired: true, Bearer: "CSD",
				NetworkRequired: true, Network: "GSM",
			},
			expected: BearerSpec{},
			ok:       true,
		},
		{
			name: "SMS over GSM is kept",
			spec: BearerSpec{
				BearerRequired: true, Bearer: "SMS",
				NetworkRequired: true, Network: "GSM",
			},
			expected: BearerSpec{
				BearerRequired: true, Bearer: "SMS",
				NetworkRequired: true, Network: "GSM",
			},
			ok: true,
		},
		{
			name: "unknown bearer rejects",
			spec: BearerSpec{
				BearerRequired: true, Bearer: "Pigeon",
				NetworkRequired: true, Network: "GSM",
			},
			ok: false,
		},
		{
			name: "unknown network rejects",
			spec: BearerSpec{
				BearerRequired: true, Bearer: "SMS",
				NetworkRequired: true, Network: "FM Radio",
			},
			ok: false,
		},
	}

	for _, test := range tests {
		got, ok := SelectBearerNetwork(test.spec)
		if ok != test.ok {
			t.Errorf("%s: expected ok=%v, got %v", test.name, test.ok, ok)
			continue
		}
		if ok && got != test.expected {
			t.Errorf("%s: expected %+v, got %+v", test.name, test.expected, got)
		}
	}
}

func TestSMSRequested(t *testing.T) {
	sms := BearerSpec{BearerRequired: true, Bearer: "SMS", NetworkRequired: true, Network: "GSM"}
	if !SMSRequested(sms) {
		t.Error("SMS over GSM must report as SMS delivery")
	}
	if SMSRequested(BearerSpec{BearerRequired: true, Bearer: "SMS"}) {
		t.Error("SMS without a required network is not pinned SMS delivery")
	}
}
