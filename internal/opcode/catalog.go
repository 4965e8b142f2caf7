package opcode

import "strings"

// entry is the literal table row shape used to populate Catalog inside
// init(), mirroring the opcode-table-as-data style used throughout the
// pack's instruction catalogs.
type entry struct {
	command    int
	korean     string
	english    string
	pop        int
	push       int
	immediates int
	effect     Effect
}

func fillGroup(sector, group int, rows []entry) {
	for _, r := range rows {
		addr := OpcodeAddress{Sector: sector, Group: group, Command: r.command}
		Catalog[addr.Index()] = OpMeta{
			Address:    addr,
			Korean:     r.korean,
			English:    r.english,
			Pop:        r.pop,
			Push:       r.push,
			Immediates: r.immediates,
			Effect:     r.effect,
		}
	}
}

func init() {
	// Sector 0 is the Core sector; fill reserved sectors 1-8 first so
	// the sector-0 groups below simply overwrite their slots.
	for i := range Catalog {
		addr := FromIndex(i)
		if addr.Sector == 0 {
			continue
		}
		Catalog[i] = OpMeta{Address: addr, English: "RESERVED", Korean: "예약됨", Effect: EffectNone}
	}

	// G0 Logic
	fillGroup(0, 0, []entry{
		{0, "참", "TRUE", 0, 1, 0, EffectStack},
		{1, "거짓", "FALSE", 0, 1, 0, EffectStack},
		{2, "모름", "UNKNOWN", 0, 1, 0, EffectStack},
		{3, "같음", "EQ", 2, 1, 0, EffectStack},
		{4, "다름", "NE", 2, 1, 0, EffectStack},
		{5, "큼", "GT", 2, 1, 0, EffectStack},
		{6, "작음", "LT", 2, 1, 0, EffectStack},
		{7, "아님", "NOT", 1, 1, 0, EffectStack},
		{8, "그리고", "AND", 2, 1, 0, EffectStack},
	})

	// G1 Arithmetic
	fillGroup(0, 1, []entry{
		{0, "더하기", "ADD", 2, 1, 0, EffectStack},
		{1, "빼기", "SUB", 2, 1, 0, EffectStack},
		{2, "곱하기", "MUL", 2, 1, 0, EffectStack},
		{3, "나누기", "DIV", 2, 1, 0, EffectStack},
		{4, "나머지", "MOD", 2, 1, 0, EffectStack},
		{5, "음수", "NEG", 1, 1, 0, EffectStack},
		{6, "절대값", "ABS", 1, 1, 0, EffectStack},
		{7, "제곱", "SQR", 1, 1, 0, EffectStack},
		{8, "제곱근", "SQRT", 1, 1, 0, EffectStack},
	})

	// G2 Control
	fillGroup(0, 2, []entry{
		{0, "점프", "JMP", 0, 0, 1, EffectControl},
		{1, "조건점프", "JMPIF", 1, 0, 1, EffectControl},
		{2, "호출", "CALL", 0, 0, 1, EffectControl},
		{3, "복귀", "RET", 0, 0, 0, EffectControl},
		{4, "반복", "LOOP", 0, 0, 1, EffectControl},
		{5, "중단", "BREAK", 0, 0, 0, EffectControl},
		{6, "계속", "CONT", 0, 0, 0, EffectControl},
		{7, "정지", "HALT", 0, 0, 0, EffectControl},
		{8, "비교", "CMP", 2, 1, 0, EffectControl},
	})

	// G3 Stack/IO
	fillGroup(0, 3, []entry{
		{0, "밀기", "PUSH", 0, 1, 1, EffectStack},
		{1, "꺼내기", "POP", 1, 0, 0, EffectStack},
		{2, "복제", "DUP", 0, 1, 0, EffectStack},
		{3, "교환", "SWAP", 2, 2, 0, EffectStack},
		{4, "비우기", "CLEAR", 0, 0, 0, EffectStack},
		{5, "출력", "PRINT", 1, 0, 0, EffectIO},
		{6, "입력", "INPUT", 0, 1, 0, EffectIO},
		{7, "저장", "STORE", 2, 0, 0, EffectHeap},
		{8, "불러오기", "LOAD", 1, 1, 0, EffectHeap},
	})

	// G4 Functions
	fillGroup(0, 4, []entry{
		{0, "함수", "FUNC", 0, 0, 1, EffectMeta},
		{1, "매개변수", "PARAM", 0, 0, 1, EffectMeta},
		{2, "반환", "RETURN", 0, 0, 0, EffectControl},
		{3, "재귀", "RECUR", 0, 0, 0, EffectMeta},
		{4, "람다", "LAMBDA", 0, 0, 1, EffectMeta},
		{5, "적용", "APPLY", 0, 0, 0, EffectMeta},
		{6, "묶기", "BIND", 0, 0, 1, EffectMeta},
		{7, "풀기", "UNBIND", 0, 0, 0, EffectMeta},
		{8, "무동작", "NOP", 0, 0, 0, EffectNone},
	})

	// G5 Type
	fillGroup(0, 5, []entry{
		{0, "정수로", "TOINT", 1, 1, 0, EffectStack},
		{1, "실수로", "TOFLT", 1, 1, 0, EffectStack},
		{2, "문자열로", "TOSTR", 1, 1, 0, EffectStack},
		{3, "삼진수로", "TOTRIT", 1, 1, 0, EffectStack},
		{4, "타입", "TYPE", 1, 1, 0, EffectStack},
		{5, "논리로", "TOBOOL", 1, 1, 0, EffectStack},
		{6, "클래스", "CLASS", 0, 0, 1, EffectMeta},
		{7, "상속", "INHERIT", 0, 0, 1, EffectMeta},
		{8, "구현", "IMPL", 0, 0, 1, EffectMeta},
	})

	// G6 Exceptions
	fillGroup(0, 6, []entry{
		{0, "시도", "TRY", 0, 0, 1, EffectControl},
		{1, "포착", "CATCH", 0, 0, 1, EffectControl},
		{2, "던지기", "THROW", 1, 0, 0, EffectControl},
		{3, "마침내", "FINALLY", 0, 0, 0, EffectControl},
		{4, "단언", "ASSERT", 1, 0, 0, EffectControl},
		{5, "경고", "WARN", 1, 0, 0, EffectIO},
		{6, "오류", "ERROR", 1, 0, 0, EffectIO},
		{7, "기록", "LOG", 1, 0, 0, EffectIO},
		{8, "추적", "TRACE", 0, 0, 0, EffectIO},
	})

	// G7 Collections
	fillGroup(0, 7, []entry{
		{0, "배열", "ARRAY", 0, 1, 1, EffectHeap},
		{1, "추가", "APPEND", 2, 1, 0, EffectHeap},
		{2, "길이", "LEN", 1, 1, 0, EffectHeap},
		{3, "색인", "INDEX", 2, 1, 0, EffectHeap},
		{4, "자르기", "SLICE", 3, 1, 0, EffectHeap},
		{5, "매핑", "MAP", 1, 1, 1, EffectHeap},
		{6, "거르기", "FILTER", 1, 1, 1, EffectHeap},
		{7, "접기", "FOLD", 2, 1, 1, EffectHeap},
		{8, "정렬", "SORT", 1, 1, 0, EffectHeap},
	})

	// G8 Access/Heap
	fillGroup(0, 8, []entry{
		{0, "공개", "PUBLIC", 0, 0, 0, EffectMeta},
		{1, "비공개", "PRIVATE", 0, 0, 0, EffectMeta},
		{2, "보호", "PROTECT", 0, 0, 0, EffectMeta},
		{3, "할당", "ALLOC", 1, 1, 0, EffectHeap},
		{4, "해제", "FREE", 1, 0, 0, EffectHeap},
		{5, "힙읽기", "HREAD", 1, 1, 0, EffectHeap},
		{6, "힙쓰기", "HWRITE", 2, 0, 0, EffectHeap},
		{7, "레지스터읽기", "RLOAD", 0, 1, 1, EffectHeap},
		{8, "레지스터쓰기", "RSTORE", 1, 0, 1, EffectHeap},
	})

	NameIndex = make(map[string]OpcodeAddress, 729*3)
	for i := range Catalog {
		m := Catalog[i]
		if m.English == "" || m.English == "RESERVED" {
			continue
		}
		NameIndex[m.Korean] = m.Address
		NameIndex[m.English] = m.Address
		NameIndex[strings.ToLower(m.English)] = m.Address
	}
}
