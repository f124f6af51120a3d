package utils

// ValidateLuhn проверяет номер по алгоритму Луна.
func ValidateLuhn(number string) bool {
	if number == "" {
		return false
	}
	var sum int
	parity := len(number) % 2
	for i, r := range number {
		if r < '0' || r > '9' {
			return false
		}
		digit := int(r - '0')
		if i%2 == parity {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
	}
	return sum%10 == 0
}

// LuhnCheckDigit возвращает контрольную цифру, которую нужно дописать к payload.
func LuhnCheckDigit(payload string) (byte, bool) {
	var sum int
	double := true
	for i := len(payload) - 1; i >= 0; i-- {
		r := payload[i]
		if r < '0' || r > '9' {
			return 0, false
		}
		digit := int(r - '0')
		if double {
			digit *= 2
			if digit > 9 {
				digit -= 9
			}
		}
		sum += digit
		double = !double
	}
	return byte('0' + (10-sum%10)%10), true
}
