package gemini

import (
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/jaehyuk-choi/banking-faq-rag/internal/core/domain"
)

const intentSystemPrompt = `당신은 인터넷뱅킹 FAQ 시스템의 의도 분류기입니다.
사용자의 질문을 다음 카테고리 중 하나로 분류하세요:
- 로그인: 로그인, 비밀번호, 계정 관련
- 이체: 이체, 송금, 계좌이체 관련
- 인증서: 공동인증서, 공인인증서, 인증서 발급/갱신
- 오류코드: 오류 메시지, 에러 코드 해석
- 보안: 보안카드, OTP, 보안 설정
- 수수료: 이체 수수료, 거래 수수료
- 한도: 이체 한도, 거래 한도
- 계좌등록: 계좌 등록, 자주쓰는계좌
- 기타: 위에 해당하지 않는 경우

카테고리명만 반환하세요. 예: 이체`

const rewriteSystemPrompt = `당신은 검색 쿼리 재작성 전문가입니다.
사용자의 질문을 FAQ 검색에 최적화된 형태로 재작성하세요.

주의사항:
- 동의어/유사어 추가 (예: "공인인증서" → "공동인증서")
- 약어 확장 (예: "OTP" → "일회용 비밀번호")
- 오타 수정
- 검색에 유용한 키워드 추가

원본 질문의 의미는 유지하되, 검색 성능을 높이도록 재작성하세요.
재작성된 질문만 반환하세요.`

const answerSystemPrompt = `당신은 인터넷뱅킹 FAQ 전문 상담원입니다.

중요 규칙:
1. 반드시 제공된 FAQ 문서만을 근거로 답변하세요. 추측하지 마세요.
2. 답변은 짧고 명확하게, 단계형으로 작성하세요.
3. 반드시 출처(FAQ 제목, URL)를 명시하세요.
4. FAQ에 없는 내용은 "관련 FAQ를 찾지 못했습니다"라고 답변하세요.
5. 근거가 부족하면 confidence를 low로 설정하세요.

출력 형식 (JSON):
{
  "answer": "최종 답변 (3-5줄)",
  "steps": ["1단계", "2단계", ...],
  "citations": [{"title": "FAQ 제목", "url": "URL", "snippet": "발췌"}],
  "confidence": "high/medium/low",
  "followups": ["추가 질문1"]
}

반드시 유효한 JSON 형식으로만 응답하세요.`

func buildIntentPrompt(question string) string {
	return fmt.Sprintf("질문: %s\n\n카테고리:", question)
}

func buildRewritePrompt(question, intent string) string {
	return fmt.Sprintf("의도: %s\n원본 질문: %s\n\n재작성된 질문:", intent, question)
}

func buildAnswerPrompt(question, userContext string, evidence []domain.ScoredResult) string {
	var docs strings.Builder
	for i, doc := range evidence {
		fmt.Fprintf(&docs, "\n[FAQ %d]\n", i+1)
		fmt.Fprintf(&docs, "제목: %s\n", doc.Passage.Title)
		fmt.Fprintf(&docs, "내용: %s\n", doc.Passage.Text)
		fmt.Fprintf(&docs, "URL: %s\n", doc.Passage.URL)
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "사용자 질문: %s", question)
	if userContext != "" {
		fmt.Fprintf(&prompt, "\n상황: %s", userContext)
	}
	fmt.Fprintf(&prompt, "\n\n관련 FAQ:\n%s\n\n위 FAQ를 근거로 JSON 형식 답변을 생성하세요.", docs.String())
	return prompt.String()
}

// answerLanguageHint asks the model to reply in the question's language when
// it is reliably detected as something other than Korean.
func answerLanguageHint(question string) string {
	info := whatlanggo.Detect(question)
	if info.Lang == whatlanggo.Kor || !info.IsReliable() {
		return ""
	}
	return fmt.Sprintf("\n\n사용자 질문이 한국어가 아니면 질문 언어(%s)로 답변하세요.", info.Lang.String())
}
